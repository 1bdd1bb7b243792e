package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/jgivc/assetgate/internal/common"
)

const serviceName = "auth"

// Decision is the per-request authentication outcome. It is produced once by
// the gate and threaded into handlers; nothing downstream consults ambient
// auth state.
type Decision int

const (
	Anonymous Decision = iota
	SessionAuth
	KeyAuth
)

func (d Decision) String() string {
	return [...]string{"Anonymous", "Session", "Key"}[d]
}

func (d Decision) Authenticated() bool {
	return d != Anonymous
}

type SessionRepository interface {
	Create(ctx context.Context) (string, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type authService struct {
	secret string
	repo   SessionRepository
	log    *slog.Logger
}

func NewAuthService(secret string, repo SessionRepository, log *slog.Logger) *authService {
	return &authService{
		secret: secret,
		repo:   repo,
		log:    log.With(slog.String("service", serviceName)),
	}
}

// Login establishes a session when the presented secret matches.
func (s *authService) Login(ctx context.Context, secret string) (string, error) {
	if !s.secretMatches(secret) {
		return "", common.ErrUnauthorizedError
	}

	id, err := s.repo.Create(ctx)
	if err != nil {
		s.log.Error("Cannot create session", slog.Any("error", err))

		return "", fmt.Errorf("cannot create session: %w", err)
	}

	return id, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.log.Error("Cannot delete session", slog.Any("error", err))

		return fmt.Errorf("cannot delete session: %w", err)
	}

	return nil
}

// Verify resolves the caller's authentication decision. Session mode is
// checked first; the presented key is a per-request fallback.
func (s *authService) Verify(ctx context.Context, sessionID, presentedKey string) (Decision, error) {
	if sessionID != "" {
		ok, err := s.repo.Exists(ctx, sessionID)
		if err != nil {
			s.log.Error("Cannot check session", slog.Any("error", err))

			return Anonymous, fmt.Errorf("cannot check session: %w", err)
		}

		if ok {
			return SessionAuth, nil
		}
	}

	if presentedKey != "" && s.secretMatches(presentedKey) {
		return KeyAuth, nil
	}

	return Anonymous, nil
}

func (s *authService) secretMatches(presented string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.secret)) == 1
}
