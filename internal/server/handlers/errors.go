// Maps domain errors onto structured API errors.

package handlers

import (
	"errors"

	"github.com/yotsuba-lab/manabi/internal/ghrepo"
	"github.com/yotsuba-lab/manabi/internal/recordapi"
	"github.com/yotsuba-lab/manabi/internal/server/dto"
)

// apiError translates content-layer and backend errors into APIErrors.
// Already-translated errors pass through; anything unrecognized becomes a
// 500 with msg as the public message.
func apiError(msg string, err error) error {
	var ae *dto.APIError
	if errors.As(err, &ae) {
		return ae
	}

	var ge *ghrepo.Error
	if errors.As(err, &ge) {
		switch ge.Kind {
		case ghrepo.ErrNotFound:
			e := dto.NotFound(ge.Path).Wrap(err)
			if ge.Detail != "" {
				e.WithDetail("detail", ge.Detail)
			}
			return e
		case ghrepo.ErrAmbiguousPath:
			return dto.AmbiguousPath(ge.Path).Wrap(err)
		case ghrepo.ErrVersionConflict:
			return dto.VersionConflict(ge.Path).Wrap(err)
		case ghrepo.ErrWriteRejected:
			return dto.WriteRejected(ge.Detail).WithDetail("path", ge.Path).Wrap(err)
		case ghrepo.ErrRemoteUnavailable, ghrepo.ErrEmptyRepository, ghrepo.ErrDecodeFailure:
			return dto.RemoteUnavailable(ge.Detail).Wrap(err)
		}
	}

	var be *recordapi.BackendError
	if errors.As(err, &be) {
		return dto.BackendError(be.Status, be.Message).Wrap(err)
	}

	return dto.InternalWithError(msg, err)
}
