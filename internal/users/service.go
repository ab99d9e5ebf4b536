package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailom-erp/mailom-erp/internal/auth"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User, passwordHash string) (User, error)
	Update(ctx context.Context, id int64, user User) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	Deactivate(ctx context.Context, id int64) error
}

// Service manages user accounts.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService constructs the service.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateInput carries account creation data.
type CreateInput struct {
	Email    string
	Name     string
	Password string
	Role     rbac.Role
	ActorID  int64
}

// UpdateInput carries account update data.
type UpdateInput struct {
	Email    string
	Name     string
	Role     rbac.Role
	IsActive bool
	ActorID  int64
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrValidation
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new account.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || len(input.Password) < 8 {
		return User{}, ErrValidation
	}
	if !rbac.ValidRole(input.Role) {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	created, err := s.repo.Create(ctx, User{
		Email:    email,
		Name:     strings.TrimSpace(input.Name),
		Role:     input.Role,
		IsActive: true,
	}, hash)
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, input.ActorID, "USER_CREATE", created.ID, map[string]any{"email": created.Email, "role": created.Role})
	return created, nil
}

// Update modifies profile fields and role.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	if id <= 0 {
		return ErrValidation
	}
	if !rbac.ValidRole(input.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	err := s.repo.Update(ctx, id, User{
		Email:    strings.TrimSpace(strings.ToLower(input.Email)),
		Name:     strings.TrimSpace(input.Name),
		Role:     input.Role,
		IsActive: input.IsActive,
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, input.ActorID, "USER_UPDATE", id, map[string]any{"role": input.Role, "active": input.IsActive})
	return nil
}

// ResetPassword replaces the password of an account.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string, actorID int64) error {
	if id <= 0 || len(password) < 8 {
		return ErrValidation
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	if err := s.repo.SetPassword(ctx, id, hash); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "USER_PASSWORD_RESET", id, nil)
	return nil
}

// Deactivate disables an account.
func (s *Service) Deactivate(ctx context.Context, id int64, actorID int64) error {
	if id <= 0 {
		return ErrValidation
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "USER_DEACTIVATE", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}
