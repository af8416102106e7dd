package handlers

import (
	"context"

	"github.com/yotsuba-lab/manabi/internal/records"
	"github.com/yotsuba-lab/manabi/internal/server/dto"
	"github.com/yotsuba-lab/manabi/internal/session"
)

// SearchHandler answers compound record queries.
type SearchHandler struct {
	svc *Services
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(svc *Services) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search rebuilds the record views from the backend's current rows and
// applies the filter stages. The rebuild is whole-set on every query, so a
// change in any source collection is always reflected.
func (h *SearchHandler) Search(ctx context.Context, sess session.Session, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	views, err := h.loadViews(ctx, sess)
	if err != nil {
		return nil, err
	}

	found := records.Search(views, records.Filters{
		Category: req.Category,
		Tags:     req.TagList(),
		Text:     req.Text,
		Sort:     records.SortOrder(req.Sort),
	})

	out := make([]dto.RecordView, len(found))
	for i, v := range found {
		out[i] = viewResponse(v)
	}
	return &dto.SearchResponse{Records: out}, nil
}

// loadViews joins the backend's four collections into denormalized views.
func (h *SearchHandler) loadViews(ctx context.Context, sess session.Session) ([]records.View, error) {
	recs, err := h.svc.Backend.ListRecords(ctx, sess.UserID)
	if err != nil {
		return nil, apiError("Failed to load records", err)
	}
	tags, err := h.svc.Backend.ListTags(ctx)
	if err != nil {
		return nil, apiError("Failed to load tags", err)
	}
	links, err := h.svc.Backend.ListLinks(ctx)
	if err != nil {
		return nil, apiError("Failed to load tag links", err)
	}
	categories, err := h.svc.Backend.ListCategories(ctx)
	if err != nil {
		return nil, apiError("Failed to load categories", err)
	}
	return records.Rebuild(recs, tags, links, categories), nil
}
