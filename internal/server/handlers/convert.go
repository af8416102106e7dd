// Converts domain types to dto types.

package handlers

import (
	"time"

	"github.com/yotsuba-lab/manabi/internal/ghrepo"
	"github.com/yotsuba-lab/manabi/internal/records"
	"github.com/yotsuba-lab/manabi/internal/server/dto"
)

func fileResponse(f *ghrepo.File) *dto.FileResponse {
	return &dto.FileResponse{
		Path:        f.Path,
		SHA:         f.SHA,
		Kind:        string(f.Kind),
		Text:        f.Text,
		DataURL:     f.DataURL,
		DownloadURL: f.DownloadURL,
		Language:    f.Language,
		Size:        f.Size,
	}
}

func viewResponse(v records.View) dto.RecordView {
	out := dto.RecordView{
		ID:                 v.ID,
		Title:              v.Title,
		ExplanatoryText:    v.ExplanatoryText,
		UnderstandingLevel: v.UnderstandingLevel,
		ReferenceURL:       v.ReferenceURL,
		CategoryID:         v.CategoryID,
		CategoryName:       v.CategoryName,
		Tags:               v.Tags,
		GitHubPath:         v.GitHubPath,
		CommitSHA:          v.CommitSHA,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !v.CreatedAt.IsZero() {
		out.CreatedAt = v.CreatedAt.Format(time.RFC3339)
	}
	return out
}

func recordResponse(r *records.Record, tags []string) dto.RecordView {
	if tags == nil {
		tags = []string{}
	}
	return viewResponse(records.View{Record: *r, Tags: tags})
}
