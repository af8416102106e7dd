// Converts blob content between transport base64 and display forms, and
// classifies paths by extension.

package ghrepo

import (
	"encoding/base64"
	"path"
	"strings"
	"unicode/utf8"
)

// Kind classifies a file's content by its path.
type Kind string

const (
	// KindText is any file rendered as text.
	KindText Kind = "text"
	// KindImage is a raster or vector image rendered inline.
	KindImage Kind = "image"
	// KindBinary is anything not previewable as text or image.
	KindBinary Kind = "binary"
)

// DecodeFailed is returned in place of text that could not be decoded.
// It degrades the view instead of failing it.
const DecodeFailed = "(decoding failed)"

var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"bmp": true, "svg": true, "ico": true, "webp": true,
}

var binaryExts = map[string]bool{
	"zip": true, "gz": true, "tar": true, "rar": true,
	"exe": true, "dll": true, "pdf": true,
	"doc": true, "docx": true, "ppt": true, "pptx": true,
	"xls": true, "xlsx": true, "jar": true,
}

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"ico":  "image/x-icon",
	"txt":  "text/plain",
	"md":   "text/markdown",
	"json": "application/json",
	"js":   "application/javascript",
	"ts":   "application/typescript",
	"html": "text/html",
	"css":  "text/css",
}

// ext returns the lowercase extension of p without the leading dot.
func ext(p string) string {
	e := path.Ext(p)
	if e == "" {
		return ""
	}
	return strings.ToLower(e[1:])
}

// Classify derives a content kind from the file extension alone. Content
// heuristics in ReadFile may later downgrade a text classification to binary.
func Classify(p string) Kind {
	e := ext(p)
	switch {
	case imageExts[e]:
		return KindImage
	case binaryExts[e]:
		return KindBinary
	default:
		return KindText
	}
}

// MIMEType returns the MIME type for a path, falling back to
// application/octet-stream for unknown extensions.
func MIMEType(p string) string {
	if m, ok := mimeTypes[ext(p)]; ok {
		return m
	}
	return "application/octet-stream"
}

// stripTransportWhitespace removes the newlines and spaces the Contents API
// inserts into base64 bodies.
func stripTransportWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

// decodeBase64 strips transport whitespace and decodes.
func decodeBase64(b64 string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(stripTransportWhitespace(b64))
}

// DecodeText converts a transport base64 body to UTF-8 text. On any failure
// it returns the DecodeFailed sentinel rather than an error, since the result
// is presentation-only.
func DecodeText(b64 string) string {
	s, err := decodeText(b64)
	if err != nil {
		return DecodeFailed
	}
	return s
}

// decodeText is the strict form of DecodeText for callers that branch on the
// failure.
func decodeText(b64 string) (string, error) {
	raw, err := decodeBase64(b64)
	if err != nil {
		return "", &Error{Kind: ErrDecodeFailure, cause: err}
	}
	if !utf8.Valid(raw) {
		return "", remoteErr(ErrDecodeFailure, "", 0, "content is not valid UTF-8")
	}
	return string(raw), nil
}

// EncodeText converts UTF-8 text to transport base64.
// DecodeText(EncodeText(s)) == s for any valid UTF-8 s.
func EncodeText(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// EncodeBytes converts raw bytes to transport base64.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// ImageDataURL wraps a transport base64 body as a data: URI for inline
// rendering, choosing the MIME type from the path.
func ImageDataURL(b64, p string) string {
	return "data:" + MIMEType(p) + ";base64," + stripTransportWhitespace(b64)
}

var languageByExt = map[string]string{
	"js": "javascript", "cjs": "javascript", "mjs": "javascript",
	"jsx": "jsx", "ts": "typescript", "tsx": "tsx",
	"html": "html", "htm": "html",
	"css": "css", "scss": "scss", "sass": "scss", "less": "less",
	"vue": "vue", "svelte": "svelte",
	"py": "python", "pyw": "python",
	"java": "java", "php": "php", "go": "go", "rb": "ruby",
	"cs": "csharp", "csx": "csharp", "rs": "rust",
	"kt": "kotlin", "kts": "kotlin", "swift": "swift",
	"pl": "perl", "pm": "perl", "ex": "elixir", "exs": "elixir",
	"c": "c", "h": "c", "cpp": "cpp", "hpp": "cpp", "cc": "cpp",
	"m": "objectivec",
	"json": "json", "xml": "xml", "yml": "yaml", "yaml": "yaml",
	"md": "markdown", "markdown": "markdown",
	"sql": "sql", "graphql": "graphql", "gql": "graphql",
	"toml": "toml", "csv": "csv",
	"sh": "bash", "bash": "bash", "zsh": "bash",
	"ps1": "powershell", "bat": "batch", "cmd": "batch",
	"lua": "lua", "ini": "ini", "env": "properties",
	"gitignore": "git", "gitattributes": "git", "gitmodules": "git",
	"r": "r", "dart": "dart", "jl": "julia",
}

// Language returns the syntax-highlight language token for a text path.
// Dockerfiles are recognized by filename rather than extension.
func Language(p string) string {
	if strings.EqualFold(path.Base(p), "dockerfile") {
		return "docker"
	}
	if lang, ok := languageByExt[ext(p)]; ok {
		return lang
	}
	return "plaintext"
}
