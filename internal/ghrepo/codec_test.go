package ghrepo

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"docs/readme.md", KindText},
		{"main.go", KindText},
		{"photo.PNG", KindImage},
		{"a/b/c.jpeg", KindImage},
		{"icon.svg", KindImage},
		{"favicon.ico", KindImage},
		{"anim.webp", KindImage},
		{"archive.zip", KindBinary},
		{"report.pdf", KindBinary},
		{"sheet.xlsx", KindBinary},
		{"noextension", KindText},
		{"weird.xyz", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDecodeTextRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"multi\nline\ncontent\n",
		"日本語のテキストも往復する",
		"emoji ✅ and symbols © ®",
	}
	for _, s := range inputs {
		if got := DecodeText(EncodeText(s)); got != s {
			t.Errorf("DecodeText(EncodeText(%q)) = %q", s, got)
		}
	}
}

func TestDecodeTextStripsTransportWhitespace(t *testing.T) {
	// The Contents API wraps base64 bodies with newlines every 60 chars.
	b64 := EncodeText("the quick brown fox jumps over the lazy dog, repeatedly, for length")
	var wrapped strings.Builder
	for i, r := range b64 {
		if i > 0 && i%20 == 0 {
			wrapped.WriteString("\n")
		}
		wrapped.WriteRune(r)
	}
	if got := DecodeText(wrapped.String()); !strings.Contains(got, "quick brown fox") {
		t.Errorf("DecodeText with wrapped input = %q", got)
	}
}

func TestDecodeTextFailureSentinel(t *testing.T) {
	if got := DecodeText("!!!not-base64!!!"); got != DecodeFailed {
		t.Errorf("DecodeText(garbage) = %q, want sentinel", got)
	}
	// Valid base64, invalid UTF-8.
	b64 := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00, 0x80})
	if got := DecodeText(b64); got != DecodeFailed {
		t.Errorf("DecodeText(non-utf8) = %q, want sentinel", got)
	}
}

func TestDecodeTextStrictKind(t *testing.T) {
	_, err := decodeText("!!!not-base64!!!")
	if !IsKind(err, ErrDecodeFailure) {
		t.Errorf("decodeText error = %v, want decode failure", err)
	}
}

func TestImageDataURL(t *testing.T) {
	b64 := "aGVs\nbG8=" // whitespace must be stripped
	got := ImageDataURL(b64, "shots/login.png")
	want := "data:image/png;base64,aGVsbG8="
	if got != want {
		t.Errorf("ImageDataURL = %q, want %q", got, want)
	}
}

func TestMIMETypeFallback(t *testing.T) {
	if got := MIMEType("blob.bin"); got != "application/octet-stream" {
		t.Errorf("MIMEType(blob.bin) = %q", got)
	}
	if got := MIMEType("a.JPG"); got != "image/jpeg" {
		t.Errorf("MIMEType(a.JPG) = %q", got)
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"app/Dockerfile", "docker"},
		{"dockerfile", "docker"},
		{"script.sh", "bash"},
		{"component.tsx", "tsx"},
		{"notes.txt", "plaintext"},
		{"config.yml", "yaml"},
	}
	for _, tt := range tests {
		if got := Language(tt.path); got != tt.want {
			t.Errorf("Language(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
