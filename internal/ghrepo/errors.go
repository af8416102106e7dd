// Typed failures for remote content operations.

package ghrepo

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote content failure.
type ErrorKind string

const (
	// ErrRemoteUnavailable indicates a network or authentication failure.
	// The user may re-trigger the action; the service never auto-retries.
	ErrRemoteUnavailable ErrorKind = "remote_unavailable"
	// ErrNotFound indicates the path or ref does not exist.
	ErrNotFound ErrorKind = "not_found"
	// ErrAmbiguousPath indicates the path resolved to a directory where a
	// blob was expected, or vice versa.
	ErrAmbiguousPath ErrorKind = "ambiguous_path"
	// ErrVersionConflict indicates the supplied sha no longer matches the
	// remote's current content. The caller must re-read and decide; a silent
	// retry could overwrite a concurrent edit.
	ErrVersionConflict ErrorKind = "version_conflict"
	// ErrWriteRejected indicates any other remote-side write failure
	// (permissions, quota, malformed content).
	ErrWriteRejected ErrorKind = "write_rejected"
	// ErrEmptyRepository indicates the repository has no blobs at the ref.
	// Callers treat this as an empty listing, not a failure.
	ErrEmptyRepository ErrorKind = "empty_repository"
	// ErrDecodeFailure indicates blob content could not be interpreted as
	// text.
	ErrDecodeFailure ErrorKind = "decode_failure"
)

// Error is a remote content failure with enough context for the caller to
// produce a user-visible message.
type Error struct {
	Kind   ErrorKind
	Path   string
	Status int    // HTTP status from the remote, 0 for transport failures
	Detail string // the remote's message, if it supplied one
	cause  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

func remoteErr(kind ErrorKind, path string, status int, detail string) *Error {
	return &Error{Kind: kind, Path: path, Status: status, Detail: detail}
}

func transportErr(path string, cause error) *Error {
	return &Error{Kind: ErrRemoteUnavailable, Path: path, cause: cause}
}
