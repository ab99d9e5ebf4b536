package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mailom-erp/mailom-erp/internal/rbac"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) List(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

func (m *mockRepo) Get(ctx context.Context, id int64) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, user User, passwordHash string) (User, error) {
	args := m.Called(ctx, user, passwordHash)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, id int64, user User) error {
	return m.Called(ctx, id, user).Error(0)
}

func (m *mockRepo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockRepo) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateNormalizesEmailAndHashesPassword(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u User) bool {
		return u.Email == "somchai@mailom.test" && u.IsActive
	}), mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("changeme123")) == nil
	})).Return(User{ID: 7, Email: "somchai@mailom.test", Role: rbac.RoleEmployee}, nil)

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "  Somchai@Mailom.Test ",
		Name:     "Somchai",
		Password: "changeme123",
		Role:     rbac.RoleEmployee,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), created.ID)
	repo.AssertExpectations(t)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "x@mailom.test",
		Password: "changeme123",
		Role:     rbac.Role("SUPERVISOR"),
	})
	require.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := NewService(new(mockRepo), nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "x@mailom.test",
		Password: "short",
		Role:     rbac.RoleUser,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdatePropagatesRepositoryError(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil)

	repo.On("Update", mock.Anything, int64(4), mock.Anything).Return(ErrDuplicateEmail)

	err := svc.Update(context.Background(), 4, UpdateInput{
		Email: "taken@mailom.test",
		Role:  rbac.RoleManager,
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestResetPasswordValidatesLength(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil)

	require.ErrorIs(t, svc.ResetPassword(context.Background(), 3, "tiny", 1), ErrValidation)
	repo.AssertNotCalled(t, "SetPassword")
}

func TestDeactivateNotFound(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil)

	repo.On("Deactivate", mock.Anything, int64(99)).Return(ErrNotFound)

	err := svc.Deactivate(context.Background(), 99, 1)
	require.True(t, errors.Is(err, ErrNotFound))
}
