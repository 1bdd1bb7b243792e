package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/assetgate/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	sessions map[string]struct{}
	next     string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]struct{}),
		next:     "session-1",
	}
}

func (r *fakeSessionRepo) Create(ctx context.Context) (string, error) {
	r.sessions[r.next] = struct{}{}

	return r.next, nil
}

func (r *fakeSessionRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := r.sessions[id]

	return ok, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	delete(r.sessions, id)

	return nil
}

func newTestService(repo SessionRepository) *authService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	return NewAuthService("topsecret", repo, log)
}

func TestLogin(t *testing.T) {
	repo := newFakeSessionRepo()
	srv := newTestService(repo)
	ctx := context.Background()

	_, err := srv.Login(ctx, "wrong")
	require.ErrorIs(t, err, common.ErrUnauthorizedError)
	require.Empty(t, repo.sessions)

	id, err := srv.Login(ctx, "topsecret")
	require.NoError(t, err)
	require.Equal(t, "session-1", id)
}

func TestVerify(t *testing.T) {
	repo := newFakeSessionRepo()
	srv := newTestService(repo)
	ctx := context.Background()

	id, err := srv.Login(ctx, "topsecret")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		sessionID string
		key       string
		expected  Decision
	}{
		{name: "no credentials", expected: Anonymous},
		{name: "valid session", sessionID: id, expected: SessionAuth},
		{name: "stale session", sessionID: "gone", expected: Anonymous},
		{name: "valid key", key: "topsecret", expected: KeyAuth},
		{name: "wrong key", key: "nope", expected: Anonymous},
		{name: "session wins over key", sessionID: id, key: "topsecret", expected: SessionAuth},
		{name: "stale session falls back to key", sessionID: "gone", key: "topsecret", expected: KeyAuth},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := srv.Verify(ctx, tc.sessionID, tc.key)
			require.NoError(t, err)
			require.Equal(t, tc.expected, decision)
		})
	}
}

func TestLogout(t *testing.T) {
	repo := newFakeSessionRepo()
	srv := newTestService(repo)
	ctx := context.Background()

	id, err := srv.Login(ctx, "topsecret")
	require.NoError(t, err)

	require.NoError(t, srv.Logout(ctx, id))

	decision, err := srv.Verify(ctx, id, "")
	require.NoError(t, err)
	require.Equal(t, Anonymous, decision)
}
