// Package records joins flat learning-record rows with their tag and
// category relations and answers compound filter queries over the result.
//
// The four source collections are owned by the record-storage backend; this
// package holds only a derived, read-only projection that is rebuilt in full
// whenever any source collection changes. Full rebuild over partial patching
// is deliberate: the join is cheap and wholesale replacement cannot leave a
// stale edge behind.
package records

import "time"

// Record is one learning record row as stored by the backend.
type Record struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	ExplanatoryText    string    `json:"explanatory_text"`
	UnderstandingLevel int       `json:"understanding_level"` // 0..5
	ReferenceURL       string    `json:"reference_url,omitempty"`
	CategoryID         int64     `json:"category_id,omitempty"` // 0 means uncategorized
	GitHubPath         string    `json:"github_path,omitempty"`
	CommitSHA          string    `json:"commit_sha,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UserID             int64     `json:"user_id"`
}

// Tag is one tag row.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagLink joins a record to a tag.
type TagLink struct {
	LearningID int64 `json:"learning_id"`
	TagID      int64 `json:"tag_id"`
}

// Category is one category row.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// View is a record with its tag names and category name resolved. Derived,
// never persisted.
type View struct {
	Record
	Tags         []string `json:"tags"`
	CategoryName string   `json:"category_name,omitempty"`
}
