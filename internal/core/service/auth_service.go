package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

const minPasswordLength = 6

// AuthService is the identity provider. Accounts live in the remote backend
// when one is configured and reachable; otherwise they are created in the
// local store with local-prefixed ids that never reach the remote backend.
type AuthService struct {
	remote ports.UserRepository
	local  ports.UserRepository
	log    zerolog.Logger
	now    func() time.Time
}

// NewAuthService builds the service. remote may be nil.
func NewAuthService(remote, local ports.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{remote: remote, local: local, log: log, now: time.Now}
}

// SignUp creates an account on the starter plan.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*domain.UserProfile, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	// Accounts created while the remote backend was down stay local, so their
	// e-mails are reserved in both namespaces.
	if _, err := s.local.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check local accounts: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Plan:         domain.PlanStarter,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.remote != nil {
		user.ID = uuid.NewString()
		created, err := s.remote.Create(ctx, user)
		switch {
		case err == nil:
			p := created.Profile()
			return &p, nil
		case errors.Is(err, domain.ErrUserExists):
			return nil, err
		default:
			s.log.Warn().Err(err).Msg("remote sign-up failed, creating local account")
		}
	}

	// The e-mail may already belong to a remote account we could not reach;
	// the local store only guards its own namespace.
	user.ID = domain.NewLocalID()
	created, err := s.local.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	p := created.Profile()
	return &p, nil
}

// SignIn verifies credentials against the remote backend first and the local
// store second. Unknown e-mails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	users, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
			p := user.Profile()
			return &p, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

// Resolve loads the live profile for userID.
func (s *AuthService) Resolve(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.repoFor(userID).FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	p := user.Profile()
	return &p, nil
}

// UpdateProfile applies update to the account and returns the complete profile.
// When the owning backend cannot be reached the mutation is projected onto
// current and reported as UpdateAppliedLocally.
func (s *AuthService) UpdateProfile(ctx context.Context, current domain.UserProfile, update domain.ProfileUpdate) (domain.ProfileResult, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return domain.ProfileResult{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}
	if update.Email != nil && domain.NormalizeEmail(*update.Email) == "" {
		return domain.ProfileResult{}, fmt.Errorf("%w: email must not be empty", domain.ErrInvalidInput)
	}

	return s.mutate(ctx, current, func(u *domain.User) {
		if update.Name != nil {
			u.Name = strings.TrimSpace(*update.Name)
		}
		if update.Email != nil {
			u.Email = domain.NormalizeEmail(*update.Email)
		}
	})
}

// UpdatePlan sets the subscription tier. Repeating the call is harmless.
func (s *AuthService) UpdatePlan(ctx context.Context, current domain.UserProfile, plan domain.PlanTier) (domain.ProfileResult, error) {
	tier, ok := domain.ParsePlanTier(string(plan))
	if !ok {
		return domain.ProfileResult{}, fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidInput, plan)
	}
	return s.mutate(ctx, current, func(u *domain.User) { u.Plan = tier })
}

// UpdatePassword replaces the password after checking the current one.
// Every failure propagates; there is no local projection for credentials.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	repo := s.repoFor(userID)
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.now().UTC()
	if _, err := repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *AuthService) mutate(ctx context.Context, current domain.UserProfile, apply func(*domain.User)) (domain.ProfileResult, error) {
	projected := domain.User{ID: current.ID, Name: current.Name, Email: current.Email, Plan: current.Plan}
	apply(&projected)
	local := domain.ProfileResult{Profile: projected.Profile(), Status: domain.UpdateAppliedLocally}

	remote := s.usesRemote(current.ID)
	repo := s.repoFor(current.ID)

	user, err := repo.FindByID(ctx, current.ID)
	if err != nil {
		if remote && !isCallerError(err) {
			s.log.Warn().Err(err).Str("user_id", current.ID).Msg("identity backend unavailable, applying profile change locally")
			return local, nil
		}
		return domain.ProfileResult{}, err
	}

	apply(user)
	user.UpdatedAt = s.now().UTC()
	updated, err := repo.Update(ctx, user)
	if err != nil {
		if remote && !isCallerError(err) {
			s.log.Warn().Err(err).Str("user_id", current.ID).Msg("identity backend update failed, applying profile change locally")
			return local, nil
		}
		return domain.ProfileResult{}, err
	}

	status := domain.UpdateAppliedLocally
	if remote {
		status = domain.UpdateConfirmed
	}
	return domain.ProfileResult{Profile: updated.Profile(), Status: status}, nil
}

// findByEmail returns the accounts registered under email, remote first.
// An unreachable remote backend only narrows the result to local accounts.
func (s *AuthService) findByEmail(ctx context.Context, email string) ([]*domain.User, error) {
	var users []*domain.User
	if s.remote != nil {
		user, err := s.remote.FindByEmail(ctx, email)
		switch {
		case err == nil:
			users = append(users, user)
		case errors.Is(err, domain.ErrUserNotFound):
		default:
			s.log.Warn().Err(err).Msg("remote identity lookup failed, checking local accounts")
		}
	}
	user, err := s.local.FindByEmail(ctx, email)
	switch {
	case err == nil:
		users = append(users, user)
	case errors.Is(err, domain.ErrUserNotFound):
	case len(users) == 0:
		return nil, err
	default:
		s.log.Warn().Err(err).Msg("local identity lookup failed")
	}
	return users, nil
}

func (s *AuthService) usesRemote(userID string) bool {
	return s.remote != nil && domain.IsCanonicalID(userID)
}

func (s *AuthService) repoFor(userID string) ports.UserRepository {
	if s.usesRemote(userID) {
		return s.remote
	}
	return s.local
}

// isCallerError reports errors that must reach the caller instead of being
// absorbed by a local projection.
func isCallerError(err error) bool {
	return errors.Is(err, domain.ErrUserExists) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidCredentials)
}
