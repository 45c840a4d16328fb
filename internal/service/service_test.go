package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"go-habit-engine/internal/domain"
	"go-habit-engine/internal/engine"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// fakeRepo 纯内存仓储，另外记录落库次数和脏字段，供断言用
type fakeRepo struct {
	users       map[string]*domain.User
	saves       int
	lastTouched domain.Touched
	failSave    bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*domain.User{}}
}

func (r *fakeRepo) Create(_ context.Context, u *domain.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) FindByToken(ctx context.Context, id, token string) (*domain.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil || u.APIToken != token {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) List(_ context.Context, _, _ int) ([]domain.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepo) Save(_ context.Context, u *domain.User, touched domain.Touched) error {
	if r.failSave {
		return errors.New("save failed")
	}
	r.saves++
	r.lastTouched = touched
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) SoftDelete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *domain.User) {
	t.Helper()
	repo := newFakeRepo()
	u := domain.NewUser("u1", "tok", testNow)
	repo.users[u.ID] = u
	svc := New(zap.NewNop(), repo, engine.DefaultRules()).
		WithClock(func() time.Time { return testNow })
	return svc, repo, u
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
func intp(n int) *int       { return &n }
