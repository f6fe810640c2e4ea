// Package auth resolves the caller of a request, either an end user (Clerk session JWT,
// or a plain user id in noop mode) or another service holding the shared service token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	sharederrors "github.com/pulse/achievement-service/internal/shared/errors"
)

// Mode selects how user credentials are verified.
type Mode string

const (
	ModeClerk Mode = "clerk"
	// ModeNoop trusts the presented credential as the user id. Local development only.
	ModeNoop Mode = "noop"
)

// UserIDHeader carries an already-resolved user id from the gateway.
const UserIDHeader = "X-User-ID"

// Config selects and configures the user Verifier.
type Config struct {
	Mode     Mode
	JWKSURL  string
	Audience string
	Issuer   string
}

// AuthenticatedUser is the subject attached to the request context.
type AuthenticatedUser struct {
	UserID    string
	SessionID string
	ExpiresAt int64
	Token     string
}

// Verifier turns a credential into a user.
type Verifier interface {
	Verify(ctx context.Context, token string) (AuthenticatedUser, error)
}

// ErrUnauthenticated is wrapped by every rejection the middleware writes.
var ErrUnauthenticated = errors.New("unauthenticated")

type userKey struct{}

// Middleware attaches the verified user to the request context and answers 401 otherwise.
// With a nil verifier requests pass through untouched.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r, verifier)
			if err != nil {
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func authenticate(r *http.Request, verifier Verifier) (AuthenticatedUser, error) {
	credential, err := userCredential(r.Header)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	user, err := verifier.Verify(r.Context(), credential)
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return user, nil
}

// userCredential prefers the gateway's user header over a bearer token.
func userCredential(h http.Header) (string, error) {
	if id := strings.TrimSpace(h.Get(UserIDHeader)); id != "" {
		return id, nil
	}

	raw := h.Get("Authorization")
	if raw == "" {
		return "", fmt.Errorf("%w: no credentials", ErrUnauthenticated)
	}
	scheme, token, ok := strings.Cut(raw, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", fmt.Errorf("%w: malformed authorization header", ErrUnauthenticated)
	}
	return token, nil
}

func reject(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(sharederrors.ErrorResponse{
		Code:      sharederrors.CodeUnauthorized,
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// WithUser returns ctx carrying user.
func WithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user stored by Middleware or WithUser.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(userKey{}).(AuthenticatedUser)
	return user, ok
}

// NewVerifier builds the Verifier for cfg.Mode.
func NewVerifier(cfg Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeClerk:
		return newClerkVerifier(cfg)
	case ModeNoop:
		return newNoopVerifier(cfg), nil
	}
	return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Mode)
}
