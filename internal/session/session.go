// Package session carries the authenticated GitHub identity through core
// operations.
//
// The OAuth code exchange itself happens outside this process; what arrives
// here is the opaque access token plus the login name obtained from it. Every
// operation that touches the remote repository or the record backend receives
// a Session value explicitly instead of reading ambient global state, so each
// service can be tested with a fabricated session.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RepoPrefix is prepended to the login name to derive the per-user
// content repository name.
const RepoPrefix = "manabi"

// Session identifies one authenticated user and their content repository.
type Session struct {
	// Token is the opaque GitHub access credential.
	Token string
	// Login is the GitHub login name, used as the repository owner.
	Login string
	// Repo is the derived content repository name.
	Repo string
	// UserID is the record backend's integer id for this user.
	UserID int64
}

// New builds a session for the given credential and identity.
// The repository name is derived deterministically from the login.
func New(token, login string, userID int64) Session {
	return Session{
		Token:  token,
		Login:  login,
		Repo:   DeriveRepoName(login),
		UserID: userID,
	}
}

// DeriveRepoName returns the content repository name for a login.
func DeriveRepoName(login string) string {
	return RepoPrefix + "-" + login
}

// Validate checks that the session carries everything core operations need.
func (s *Session) Validate() error {
	if s.Token == "" {
		return errors.New("session: missing access token")
	}
	if s.Login == "" {
		return errors.New("session: missing login")
	}
	if s.Repo == "" {
		return errors.New("session: missing repository name")
	}
	return nil
}

// claims is the JWT payload used to hand a session from the token-exchange
// collaborator to this server.
type claims struct {
	Login  string `json:"login"`
	Token  string `json:"ghtok"`
	UserID int64  `json:"uid"`
	jwt.RegisteredClaims
}

// Encode signs the session as an HS256 JWT valid for ttl.
func Encode(secret []byte, s Session, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Login:  s.Login,
		Token:  s.Token,
		UserID: s.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   s.Login,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

// Decode validates a signed session token and reconstructs the session.
func Decode(secret []byte, tokenString string) (Session, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("parse session token: %w", err)
	}
	if !tok.Valid {
		return Session{}, errors.New("invalid session token")
	}
	s := New(c.Token, c.Login, c.UserID)
	return s, s.Validate()
}
