// Builds denormalized record views from the backend's flat rows.

package records

// Rebuild projects every record into a View, resolving tag names through the
// link table and the category name through the category list.
//
// A link pointing at a missing tag, or a category id matching no category, is
// dropped from the derived fields rather than failing the rebuild: a
// partially inconsistent backend must not blank the whole screen. Pure
// function; same inputs always yield the same output.
func Rebuild(recs []Record, tags []Tag, links []TagLink, categories []Category) []View {
	tagNames := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}

	// Link insertion order defines tag order within a record.
	tagsByRecord := make(map[int64][]int64, len(recs))
	for _, l := range links {
		tagsByRecord[l.LearningID] = append(tagsByRecord[l.LearningID], l.TagID)
	}

	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	views := make([]View, 0, len(recs))
	for _, r := range recs {
		v := View{Record: r, Tags: []string{}}
		for _, tid := range tagsByRecord[r.ID] {
			name, ok := tagNames[tid]
			if !ok {
				continue // dangling link
			}
			v.Tags = append(v.Tags, name)
		}
		if r.CategoryID != 0 {
			v.CategoryName = categoryNames[r.CategoryID]
		}
		views = append(views, v)
	}
	return views
}
