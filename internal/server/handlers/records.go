package handlers

import (
	"context"

	"github.com/yotsuba-lab/manabi/internal/recordapi"
	"github.com/yotsuba-lab/manabi/internal/server/dto"
	"github.com/yotsuba-lab/manabi/internal/session"
)

// RecordHandler handles learning-record and category mutations.
type RecordHandler struct {
	svc *Services
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(svc *Services) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// writeNoteFile writes the record's note file when the request carries
// content. The write is awaited and its commit sha returned, so the record
// row saved afterwards always references a commit that exists; a failed write
// aborts the record save entirely.
func (h *RecordHandler) writeNoteFile(ctx context.Context, sess session.Session, f *dto.RecordFields) (string, error) {
	if f.FileContent == nil {
		return "", nil
	}
	client, cache := h.svc.repo(sess)
	wr, err := client.WriteFile(ctx, f.GitHubPath, []byte(*f.FileContent), f.FileSHA)
	if err != nil {
		return "", apiError("Failed to write note file", err)
	}
	cache.InvalidateAfterWrite()
	return wr.CommitSHA, nil
}

func patchFromFields(f *dto.RecordFields, commitSHA string, userID int64) recordapi.RecordPatch {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return recordapi.RecordPatch{
		Title:              f.Title,
		ExplanatoryText:    f.ExplanatoryText,
		UnderstandingLevel: f.UnderstandingLevel,
		ReferenceURL:       f.ReferenceURL,
		CategoryID:         f.CategoryID,
		Tags:               tags,
		GitHubPath:         f.GitHubPath,
		CommitSHA:          commitSHA,
		UserID:             userID,
	}
}

// CreateRecord stores a new learning record, writing its note file first
// when content is attached.
func (h *RecordHandler) CreateRecord(ctx context.Context, sess session.Session, req *dto.CreateRecordRequest) (*dto.RecordResponse, error) {
	commitSHA, err := h.writeNoteFile(ctx, sess, &req.RecordFields)
	if err != nil {
		return nil, err
	}
	rec, err := h.svc.Backend.CreateRecord(ctx, patchFromFields(&req.RecordFields, commitSHA, sess.UserID))
	if err != nil {
		return nil, apiError("Failed to create record", err)
	}
	return &dto.RecordResponse{Record: recordResponse(rec, req.Tags), CommitSHA: commitSHA}, nil
}

// UpdateRecord replaces the mutable fields of a record, writing its note
// file first when content is attached.
func (h *RecordHandler) UpdateRecord(ctx context.Context, sess session.Session, req *dto.UpdateRecordRequest) (*dto.RecordResponse, error) {
	commitSHA, err := h.writeNoteFile(ctx, sess, &req.RecordFields)
	if err != nil {
		return nil, err
	}
	rec, err := h.svc.Backend.UpdateRecord(ctx, req.ID, patchFromFields(&req.RecordFields, commitSHA, sess.UserID))
	if err != nil {
		return nil, apiError("Failed to update record", err)
	}
	return &dto.RecordResponse{Record: recordResponse(rec, req.Tags), CommitSHA: commitSHA}, nil
}

// DeleteRecord removes a record. The note file, if any, stays in the
// repository; history is the repository's concern.
func (h *RecordHandler) DeleteRecord(ctx context.Context, sess session.Session, req *dto.DeleteRecordRequest) (*dto.DeleteRecordResponse, error) {
	if err := h.svc.Backend.DeleteRecord(ctx, req.ID); err != nil {
		return nil, apiError("Failed to delete record", err)
	}
	return &dto.DeleteRecordResponse{ID: req.ID}, nil
}

// ListCategories returns all categories.
func (h *RecordHandler) ListCategories(ctx context.Context, sess session.Session, req *dto.ListCategoriesRequest) (*dto.ListCategoriesResponse, error) {
	cats, err := h.svc.Backend.ListCategories(ctx)
	if err != nil {
		return nil, apiError("Failed to list categories", err)
	}
	out := make([]dto.CategoryResponse, len(cats))
	for i, c := range cats {
		out[i] = dto.CategoryResponse{ID: c.ID, Name: c.Name}
	}
	return &dto.ListCategoriesResponse{Categories: out}, nil
}

// CreateCategory stores a new category.
func (h *RecordHandler) CreateCategory(ctx context.Context, sess session.Session, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	cat, err := h.svc.Backend.CreateCategory(ctx, req.Name)
	if err != nil {
		return nil, apiError("Failed to create category", err)
	}
	return &dto.CategoryResponse{ID: cat.ID, Name: cat.Name}, nil
}
