package profile

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/database/dbtest"
	"tutorhub/internal/domain"
	"tutorhub/internal/repository"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return "", errors.New("bucket unavailable")
	}
	m.objects[key] = data
	m.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type fixture struct {
	svc   *Service
	repos *repository.Repositories
	store *memStore
	user  *domain.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.New(dbtest.Open(t))
	p := &domain.Profile{Email: "s@x.sa", PasswordHash: "x", Role: domain.RoleStudent, FullName: "Sara"}
	require.NoError(t, repos.Profiles.Create(context.Background(), p))
	store := newMemStore()
	return &fixture{
		svc:   NewService(repos.Profiles, repos.Goals, store, zap.NewNop()),
		repos: repos,
		store: store,
		user:  p,
	}
}

func ptr[T any](v T) *T { return &v }

func TestService_UpdateMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.UpdateMe(ctx, f.user.ID, UpdateProfileRequest{Country: ptr(" Saudi Arabia "), NativeLanguage: ptr("arabic")})
	require.NoError(t, err)
	assert.Equal(t, "Sara", p.FullName)
	assert.Equal(t, "Saudi Arabia", p.Country)
	assert.Equal(t, "arabic", p.NativeLanguage)

	_, err = f.svc.UpdateMe(ctx, f.user.ID, UpdateProfileRequest{FullName: ptr("   ")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.UpdateMe(ctx, 9999, UpdateProfileRequest{Phone: ptr("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UploadAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.UploadAvatar(ctx, f.user.ID, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Contains(t, p.AvatarURL, "https://cdn.test/")
	assert.Contains(t, p.AvatarURL, ".png")
	require.Len(t, f.store.objects, 1)
	for _, ct := range f.store.types {
		assert.Equal(t, "image/png", ct)
	}
}

func TestService_UploadAvatarRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyFile},
		{"not an image", []byte("just some text"), ErrInvalidImage},
		{"svg is not accepted", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), ErrInvalidImage},
		{"too large", append(append([]byte{}, pngHeader...), make([]byte, MaxAvatarSize)...), ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UploadAvatar(ctx, f.user.ID, bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.objects)

	f.store.failPut = true
	_, err := f.svc.UploadAvatar(ctx, f.user.ID, bytes.NewReader(pngHeader))
	require.Error(t, err)
	me, err := f.svc.GetMe(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, me.AvatarURL)
}

func TestService_Goals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := &domain.Profile{Email: "o@x.sa", PasswordHash: "x", Role: domain.RoleStudent}
	require.NoError(t, f.repos.Profiles.Create(ctx, other))

	target := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	g, err := f.svc.CreateGoal(ctx, f.user.ID, CreateGoalRequest{Title: " Pass TOPIK II ", TargetDate: &target})
	require.NoError(t, err)
	assert.Equal(t, "Pass TOPIK II", g.Title)

	_, err = f.svc.CreateGoal(ctx, f.user.ID, CreateGoalRequest{Title: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.svc.UpdateGoal(ctx, f.user.ID, g.ID, UpdateGoalRequest{IsCompleted: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Pass TOPIK II", updated.Title)

	_, err = f.svc.UpdateGoal(ctx, other.ID, g.ID, UpdateGoalRequest{Title: ptr("mine now")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteGoal(ctx, other.ID, g.ID), ErrForbidden)

	goals, err := f.svc.ListGoals(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)

	require.NoError(t, f.svc.DeleteGoal(ctx, f.user.ID, g.ID))
	assert.ErrorIs(t, f.svc.DeleteGoal(ctx, f.user.ID, g.ID), ErrNotFound)

	goals, err = f.svc.ListGoals(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, goals)
	assert.Empty(t, goals)
}
