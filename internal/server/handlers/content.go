package handlers

import (
	"context"

	"github.com/yotsuba-lab/manabi/internal/server/dto"
	"github.com/yotsuba-lab/manabi/internal/session"
)

// ContentHandler handles file and folder requests against the user's
// learning repository.
type ContentHandler struct {
	svc *Services
}

// NewContentHandler creates a new content handler.
func NewContentHandler(svc *Services) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// ListFiles returns the flattened blob listing of the repository. An empty
// repository yields an empty list.
func (h *ContentHandler) ListFiles(ctx context.Context, sess session.Session, req *dto.ListFilesRequest) (*dto.ListFilesResponse, error) {
	_, cache := h.svc.repo(sess)
	entries, err := cache.Files(ctx)
	if err != nil {
		return nil, apiError("Failed to list repository files", err)
	}
	files := make([]dto.TreeFile, len(entries))
	for i, e := range entries {
		files[i] = dto.TreeFile{Path: e.Path, SHA: e.SHA}
	}
	return &dto.ListFilesResponse{Files: files}, nil
}

// GetFile reads one file, optionally at a historical revision.
func (h *ContentHandler) GetFile(ctx context.Context, sess session.Session, req *dto.GetFileRequest) (*dto.FileResponse, error) {
	client, _ := h.svc.repo(sess)
	f, err := client.ReadFile(ctx, req.Path, req.Ref)
	if err != nil {
		return nil, apiError("Failed to read file", err)
	}
	return fileResponse(f), nil
}

// PutFile creates or replaces one file. The caller's last-read sha arbitrates
// concurrent edits; losing the race yields a version-conflict error.
func (h *ContentHandler) PutFile(ctx context.Context, sess session.Session, req *dto.PutFileRequest) (*dto.WriteFileResponse, error) {
	client, cache := h.svc.repo(sess)
	wr, err := client.WriteFile(ctx, req.Path, []byte(req.Content), req.SHA)
	if err != nil {
		return nil, apiError("Failed to write file", err)
	}
	cache.InvalidateAfterWrite()
	return &dto.WriteFileResponse{
		Path:       req.Path,
		ContentSHA: wr.ContentSHA,
		CommitSHA:  wr.CommitSHA,
	}, nil
}

// CreateFolder creates an empty folder.
func (h *ContentHandler) CreateFolder(ctx context.Context, sess session.Session, req *dto.CreateFolderRequest) (*dto.CreateFolderResponse, error) {
	client, cache := h.svc.repo(sess)
	wr, err := client.CreateFolder(ctx, req.Path)
	if err != nil {
		return nil, apiError("Failed to create folder", err)
	}
	cache.InvalidateAfterWrite()
	return &dto.CreateFolderResponse{Path: req.Path, CommitSHA: wr.CommitSHA}, nil
}

// ListChildren lists a folder's immediate children, folders first.
func (h *ContentHandler) ListChildren(ctx context.Context, sess session.Session, req *dto.ListChildrenRequest) (*dto.ListChildrenResponse, error) {
	client, _ := h.svc.repo(sess)
	children, err := client.ListFolderChildren(ctx, req.Path)
	if err != nil {
		return nil, apiError("Failed to list folder", err)
	}
	out := make([]dto.FolderChild, len(children))
	for i, c := range children {
		out[i] = dto.FolderChild{Name: c.Name, Path: c.Path, Type: c.Type}
	}
	return &dto.ListChildrenResponse{Children: out}, nil
}

// Refresh drops the cached file listing and refetches it on the user's
// explicit request.
func (h *ContentHandler) Refresh(ctx context.Context, sess session.Session, req *dto.RefreshRequest) (*dto.RefreshResponse, error) {
	_, cache := h.svc.repo(sess)
	files, err := cache.Refresh(ctx)
	if err != nil {
		return nil, apiError("Failed to refresh repository listing", err)
	}
	return &dto.RefreshResponse{Files: len(files)}, nil
}
