package dto

import "strings"

// --- Health ---

// HealthRequest is a request for the health endpoint.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// --- Files ---

// ListFilesRequest is a request for the flattened repository file listing.
type ListFilesRequest struct{}

// Validate is a no-op for ListFilesRequest.
func (r *ListFilesRequest) Validate() error {
	return nil
}

// GetFileRequest is a request to read one file, optionally at a historical
// revision.
type GetFileRequest struct {
	Path string `query:"path"`
	Ref  string `query:"ref"`
}

// Validate validates the get file request fields.
func (r *GetFileRequest) Validate() error {
	if r.Path == "" {
		return MissingField("path")
	}
	return nil
}

// PutFileRequest is a request to create or replace one file.
type PutFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	// SHA is the content version the caller last read; empty means the file
	// is being created.
	SHA string `json:"sha"`
}

// Validate validates the put file request fields.
func (r *PutFileRequest) Validate() error {
	if r.Path == "" {
		return MissingField("path")
	}
	return nil
}

// --- Folders ---

// CreateFolderRequest is a request to create an empty folder.
type CreateFolderRequest struct {
	Path string `json:"path"`
}

// Validate validates the create folder request fields.
func (r *CreateFolderRequest) Validate() error {
	if strings.Trim(r.Path, "/ ") == "" {
		return MissingField("path")
	}
	return nil
}

// ListChildrenRequest is a request for a folder's immediate children. An
// empty path lists the repository root.
type ListChildrenRequest struct {
	Path string `query:"path"`
}

// Validate is a no-op for ListChildrenRequest.
func (r *ListChildrenRequest) Validate() error {
	return nil
}

// --- Refresh ---

// RefreshRequest is a request to drop caches and refetch the file listing.
type RefreshRequest struct{}

// Validate is a no-op for RefreshRequest.
func (r *RefreshRequest) Validate() error {
	return nil
}

// --- Search ---

// SearchRequest is a compound record query. Tags is comma-separated.
type SearchRequest struct {
	Category string `query:"category"`
	Tags     string `query:"tags"`
	Text     string `query:"q"`
	Sort     string `query:"sort"`
}

// Validate validates the search request fields.
func (r *SearchRequest) Validate() error {
	switch r.Sort {
	case "", "name-asc", "name-desc":
		return nil
	}
	return BadRequest("invalid sort order: " + r.Sort)
}

// TagList splits the comma-separated tag filter, dropping blanks.
func (r *SearchRequest) TagList() []string {
	if r.Tags == "" {
		return nil
	}
	parts := strings.Split(r.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// --- Records ---

// RecordFields is the mutable portion of a learning record, shared by create
// and update requests.
type RecordFields struct {
	Title              string   `json:"title"`
	ExplanatoryText    string   `json:"explanatory_text"`
	UnderstandingLevel int      `json:"understanding_level"`
	ReferenceURL       string   `json:"reference_url"`
	CategoryID         int64    `json:"category_id"`
	Tags               []string `json:"tags"`
	// GitHubPath names the note file tied to this record. When FileContent
	// is present the file is written first and the resulting commit is
	// attached to the record.
	GitHubPath  string  `json:"github_path"`
	FileContent *string `json:"file_content"`
	// FileSHA is the expected content version for the file write; empty
	// creates the file.
	FileSHA string `json:"file_sha"`
}

func (r *RecordFields) validate() error {
	if r.Title == "" {
		return MissingField("title")
	}
	if r.UnderstandingLevel < 0 || r.UnderstandingLevel > 5 {
		return BadRequest("understanding_level must be between 0 and 5")
	}
	if r.FileContent != nil && r.GitHubPath == "" {
		return MissingField("github_path")
	}
	return nil
}

// CreateRecordRequest is a request to create a learning record.
type CreateRecordRequest struct {
	RecordFields
}

// Validate validates the create record request fields.
func (r *CreateRecordRequest) Validate() error {
	return r.validate()
}

// UpdateRecordRequest is a request to update a learning record.
type UpdateRecordRequest struct {
	ID int64 `path:"id"`
	RecordFields
}

// Validate validates the update record request fields.
func (r *UpdateRecordRequest) Validate() error {
	if r.ID == 0 {
		return MissingField("id")
	}
	return r.validate()
}

// DeleteRecordRequest is a request to delete a learning record.
type DeleteRecordRequest struct {
	ID int64 `path:"id"`
}

// Validate validates the delete record request fields.
func (r *DeleteRecordRequest) Validate() error {
	if r.ID == 0 {
		return MissingField("id")
	}
	return nil
}

// --- Categories ---

// ListCategoriesRequest is a request for all categories.
type ListCategoriesRequest struct{}

// Validate is a no-op for ListCategoriesRequest.
func (r *ListCategoriesRequest) Validate() error {
	return nil
}

// CreateCategoryRequest is a request to create a category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// Validate validates the create category request fields.
func (r *CreateCategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return MissingField("name")
	}
	return nil
}
