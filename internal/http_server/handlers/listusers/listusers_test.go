package listusers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"user_service/internal/http_server/handlers/listusers"
	"user_service/internal/models"
	"user_service/internal/storage"
	"user_service/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextID int64
	users  map[int64]models.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]models.User{}}
}

func (f *fakeRepo) SaveUser(_ context.Context, username, email, passHash string) (int64, error) {
	f.nextID++
	f.users[f.nextID] = models.User{
		ID:        f.nextID,
		Username:  username,
		Email:     email,
		PassHash:  passHash,
		CreatedAt: time.Now(),
	}

	return f.nextID, nil
}

func (f *fakeRepo) UpdateUser(context.Context, int64, models.UserUpdate) error { return nil }
func (f *fakeRepo) DeleteUser(context.Context, int64) error                    { return nil }

func (f *fakeRepo) UserByEmail(context.Context, string) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func (f *fakeRepo) UserByID(context.Context, int64) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func (f *fakeRepo) ListUsers(_ context.Context, offset, limit int) ([]models.User, error) {
	all := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (f *fakeRepo) CountUsers(context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func newHandler(t *testing.T, seeded int) http.HandlerFunc {
	t.Helper()

	repo := newFakeRepo()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := users.New(log, repo, repo, nil, time.Minute, "test-secret")

	for i := 0; i < seeded; i++ {
		_, err := svc.Register(
			context.Background(),
			fmt.Sprintf("user%02d", i),
			fmt.Sprintf("user%02d@example.com", i),
			"password123",
		)
		require.NoError(t, err)
	}

	return listusers.New(log, svc)
}

func do(t *testing.T, handler http.HandlerFunc, target string) listusers.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp listusers.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestListUsers_FirstPage(t *testing.T) {
	handler := newHandler(t, 15)

	resp := do(t, handler, "/users?page=1&limit=10")

	assert.Equal(t, int64(15), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, int64(2), resp.TotalPages)
	require.Len(t, resp.Users, 10)
	assert.Equal(t, int64(1), resp.Users[0].ID)
	assert.Equal(t, int64(10), resp.Users[9].ID)
}

func TestListUsers_SecondPage(t *testing.T) {
	handler := newHandler(t, 15)

	resp := do(t, handler, "/users?page=2&limit=10")

	assert.Equal(t, int64(15), resp.Total)
	require.Len(t, resp.Users, 5)
	assert.Equal(t, int64(11), resp.Users[0].ID)
	assert.Equal(t, int64(15), resp.Users[4].ID)
}

func TestListUsers_DefaultsAndClamp(t *testing.T) {
	handler := newHandler(t, 15)

	tests := []struct {
		name      string
		target    string
		wantPage  int
		wantLimit int
		wantLen   int
	}{
		{"no params", "/users", 1, 10, 10},
		{"junk params", "/users?page=abc&limit=xyz", 1, 10, 10},
		{"zero page", "/users?page=0&limit=10", 1, 10, 10},
		{"oversized limit", "/users?page=1&limit=500", 1, 100, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, handler, tt.target)

			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, tt.wantLimit, resp.Limit)
			assert.Len(t, resp.Users, tt.wantLen)
		})
	}
}

func TestListUsers_NoPasswordLeak(t *testing.T) {
	handler := newHandler(t, 3)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "hash")
}
