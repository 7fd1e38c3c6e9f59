package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-backend/internal/domains/user/model"
	"grocery-backend/internal/shared"
	"grocery-backend/pkg/jwt"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, model.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			return &u, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []model.User{}
	for _, u := range r.users {
		if u.DeletedAt == nil {
			all = append(all, u)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return model.ErrUserNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

type fakeEnqueuer struct {
	tasks []string
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, taskType string, _ interface{}, _ ...asynq.Option) error {
	e.tasks = append(e.tasks, taskType)
	return nil
}

func newTestService() (Service, *fakeUserRepo, *fakeEnqueuer) {
	repo := newFakeUserRepo()
	enqueuer := &fakeEnqueuer{}
	tokens := jwt.NewManager("test-secret", 15*time.Minute, 24*time.Hour)
	return NewUserService(repo, tokens, enqueuer), repo, enqueuer
}

func TestRegister(t *testing.T) {
	svc, repo, enqueuer := newTestService()

	u, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "an@example.com",
		Name:     "An",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, "an@example.com", u.Email)
	assert.Equal(t, model.RoleStaff, u.Role)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash, "password must be hashed")
	assert.Len(t, repo.users, 1)

	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, shared.TypeEmailWelcome, enqueuer.tasks[0])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	req := &model.RegisterRequest{Email: "an@example.com", Name: "An", Password: "s3cret-pass"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "not-an-email",
		Name:     "An",
		Password: "s3cret-pass",
	})
	assert.Error(t, err)

	_, err = svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "an@example.com",
		Name:     "An",
		Password: "short",
	})
	assert.Error(t, err)

	assert.Empty(t, repo.users)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "an@example.com",
		Name:     "An",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	u, tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "an@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "an@example.com", u.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "an@example.com",
		Name:     "An",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "an@example.com",
		Password: "wrong-pass",
	})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	// Unknown email maps to the same error to avoid account probing.
	_, _, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1",
	})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService()

	u, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "an@example.com",
		Name:     "An",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	name := "An Updated"
	updated, err := svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "An Updated", updated.Name)

	password := "new-s3cret-pass"
	updated, err = svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	assert.NotEqual(t, u.PasswordHash, updated.PasswordHash)
}

func TestRemoveUser(t *testing.T) {
	svc, _, _ := newTestService()

	u, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "an@example.com",
		Name:     "An",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), u.ID))

	_, err = svc.Get(context.Background(), u.ID)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	assert.ErrorIs(t, svc.Remove(context.Background(), u.ID), model.ErrUserNotFound)
}
