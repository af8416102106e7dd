package session

import (
	"strings"
	"testing"
	"time"
)

func TestDeriveRepoName(t *testing.T) {
	if got := DeriveRepoName("octocat"); got != "manabi-octocat" {
		t.Errorf("DeriveRepoName = %q, want manabi-octocat", got)
	}
}

func TestNewDerivesRepo(t *testing.T) {
	s := New("tok", "octocat", 7)
	if s.Repo != "manabi-octocat" {
		t.Errorf("Repo = %q", s.Repo)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		want string
	}{
		{"missing token", Session{Login: "a", Repo: "manabi-a"}, "token"},
		{"missing login", Session{Token: "t", Repo: "manabi-a"}, "login"},
		{"missing repo", Session{Token: "t", Login: "a"}, "repository"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef")
	s := New("gho_abc123", "octocat", 42)

	tok, err := Encode(secret, s, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(secret, tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	tok, err := Encode([]byte("0123456789abcdef"), New("t", "a", 1), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode([]byte("another-secret!!"), tok); err == nil {
		t.Fatal("Decode accepted token signed with a different secret")
	}
}

func TestDecodeRejectsExpired(t *testing.T) {
	secret := []byte("0123456789abcdef")
	tok, err := Encode(secret, New("t", "a", 1), -time.Minute)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(secret, tok); err == nil {
		t.Fatal("Decode accepted expired token")
	}
}
