// Applies filter and sort stages over record views.

package records

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryAll disables the category stage.
const CategoryAll = "all"

// SortOrder selects the sort stage's direction.
type SortOrder string

const (
	// SortNameAsc orders by title ascending.
	SortNameAsc SortOrder = "name-asc"
	// SortNameDesc orders by title descending.
	SortNameDesc SortOrder = "name-desc"
)

// Filters is one compound query over record views.
type Filters struct {
	// Category keeps views whose category name matches exactly;
	// CategoryAll (or empty) keeps everything.
	Category string `json:"category"`
	// Tags keeps views carrying every listed tag (conjunctive).
	Tags []string `json:"tags"`
	// Text keeps views whose title or explanatory text contains it,
	// case-insensitively. Leading/trailing whitespace is ignored.
	Text string `json:"text"`
	// Sort orders the final set by title.
	Sort SortOrder `json:"sort"`
}

// Search applies the stages in fixed order: category, tags, text, sort.
// Later stages see already-narrowed sets, so result counts compose
// correctly. The input slice is never mutated; a miss on everything returns
// an empty slice, not an error. Idempotent: re-running on its own output
// with the same filters returns the same sequence.
func Search(views []View, f Filters) []View {
	result := make([]View, 0, len(views))

	for _, v := range views {
		if f.Category != "" && f.Category != CategoryAll && v.CategoryName != f.Category {
			continue
		}
		if !hasAllTags(v.Tags, f.Tags) {
			continue
		}
		result = append(result, v)
	}

	if text := strings.TrimSpace(f.Text); text != "" {
		needle := strings.ToLower(text)
		result = slices.DeleteFunc(result, func(v View) bool {
			return !strings.Contains(strings.ToLower(v.Title), needle) &&
				!strings.Contains(strings.ToLower(v.ExplanatoryText), needle)
		})
	}

	// Locale-aware title comparison; ties keep the prior stage's order.
	c := collate.New(language.Und)
	switch f.Sort {
	case SortNameAsc:
		slices.SortStableFunc(result, func(a, b View) int {
			return c.CompareString(a.Title, b.Title)
		})
	case SortNameDesc:
		slices.SortStableFunc(result, func(a, b View) int {
			return -c.CompareString(a.Title, b.Title)
		})
	}
	return result
}

// hasAllTags reports whether have is a superset of want.
func hasAllTags(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}
