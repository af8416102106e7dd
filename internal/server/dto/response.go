package dto

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// TreeFile is one blob in the flattened repository listing.
type TreeFile struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

// ListFilesResponse carries the flattened repository file listing.
type ListFilesResponse struct {
	Files []TreeFile `json:"files"`
}

// FileResponse is one read file. Exactly one of Text, DataURL or DownloadURL
// carries the content depending on the file's kind and size.
type FileResponse struct {
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Kind        string `json:"kind"`
	Text        string `json:"text,omitempty"`
	DataURL     string `json:"data_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Language    string `json:"language,omitempty"`
	Size        int64  `json:"size"`
}

// WriteFileResponse reports the versions produced by a successful write.
type WriteFileResponse struct {
	Path       string `json:"path"`
	ContentSHA string `json:"content_sha"`
	CommitSHA  string `json:"commit_sha"`
}

// CreateFolderResponse reports a created folder.
type CreateFolderResponse struct {
	Path      string `json:"path"`
	CommitSHA string `json:"commit_sha"`
}

// FolderChild is one immediate child of a listed folder.
type FolderChild struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "dir" or "file"
}

// ListChildrenResponse carries a folder's immediate children, folders first.
type ListChildrenResponse struct {
	Children []FolderChild `json:"children"`
}

// RefreshResponse reports the size of the refetched listing.
type RefreshResponse struct {
	Files int `json:"files"`
}

// RecordView is one denormalized learning record as the presentation layer
// consumes it.
type RecordView struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	ExplanatoryText    string   `json:"explanatory_text"`
	UnderstandingLevel int      `json:"understanding_level"`
	ReferenceURL       string   `json:"reference_url,omitempty"`
	CategoryID         int64    `json:"category_id,omitempty"`
	CategoryName       string   `json:"category_name,omitempty"`
	Tags               []string `json:"tags"`
	GitHubPath         string   `json:"github_path,omitempty"`
	CommitSHA          string   `json:"commit_sha,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
}

// SearchResponse carries the filtered, sorted record views.
type SearchResponse struct {
	Records []RecordView `json:"records"`
}

// RecordResponse carries one stored record after a create or update.
type RecordResponse struct {
	Record RecordView `json:"record"`
	// CommitSHA is set when the request also wrote the record's note file.
	CommitSHA string `json:"commit_sha,omitempty"`
}

// DeleteRecordResponse acknowledges a deletion.
type DeleteRecordResponse struct {
	ID int64 `json:"id"`
}

// CategoryResponse is one category.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListCategoriesResponse carries all categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
