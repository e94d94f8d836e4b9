package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/aimarketing/accounts/internal/mailer"
	"github.com/aimarketing/accounts/internal/repository"
	"github.com/aimarketing/accounts/pkg/auth"
	"github.com/aimarketing/accounts/pkg/config"
	"github.com/aimarketing/accounts/pkg/events"
	"github.com/aimarketing/accounts/pkg/logger"
	"github.com/alexedwards/argon2id"
)

type AccountService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error)
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) error
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	SendReminders(ctx context.Context) (int, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type accountService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	verifyRepo  repository.VerifyRepository
	mailer      mailer.Service
	eventBus    events.Publisher
	config      *config.Config
}

func NewAccountService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	verifyRepo repository.VerifyRepository,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) AccountService {
	return &accountService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		verifyRepo:  verifyRepo,
		mailer:      mailer,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *accountService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	// Uniqueness checks surface as field errors so the form can redisplay
	// them next to the inputs.
	verr := domain.NewValidationError()
	if existing, err := s.userRepo.FindByUsername(ctx, req.Username); err != nil {
		return nil, "", fmt.Errorf("failed to check existing username: %w", err)
	} else if existing != nil {
		verr.Add("username", "this username is already taken")
	}
	if existing, err := s.userRepo.FindByEmail(ctx, req.Email); err != nil {
		return nil, "", fmt.Errorf("failed to check existing email: %w", err)
	} else if existing != nil {
		verr.Add("email", "an account with this email already exists")
	}
	if !verr.Empty() {
		return nil, "", verr
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	// Account stays inactive until the email is verified.
	user, err := s.userRepo.Create(ctx, req.Username, req.Email, passwordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// Profile creation is an explicit call on the registration path, not a
	// save hook; every identity must own exactly one profile afterward.
	if _, err := s.profileRepo.Ensure(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("failed to create profile: %w", err)
	}

	token, err := s.verifyRepo.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create verification token: %w", err)
	}

	verifyURL := s.buildVerificationURL(token.Token)
	if err := s.mailer.SendVerificationEmail(user.Email, user.Username, verifyURL); err != nil {
		// Delivery failure never rolls back registration.
		logger.ErrorContext(ctx, "Failed to send verification email", "error", err, "user_id", user.ID)
	}

	s.publish(ctx, events.AccountRegistered, events.AccountRegisteredEvent{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	})

	return user, verifyURL, nil
}

func (s *accountService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.verifyRepo.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) || errors.Is(err, domain.ErrTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get verified user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	s.publish(ctx, events.AccountVerified, events.AccountVerifiedEvent{
		UserID:     user.ID,
		Email:      user.Email,
		VerifiedAt: time.Now(),
	})

	return user, nil
}

func (s *accountService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// Don't reveal whether the email is registered.
		return nil
	}

	if user.IsActive {
		return fmt.Errorf("account is already verified")
	}

	token, err := s.verifyRepo.Issue(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	verifyURL := s.buildVerificationURL(token.Token)
	if err := s.mailer.SendVerificationEmail(user.Email, user.Username, verifyURL); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification email", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// Authenticate resolves the identity by username or email and verifies the
// password. It never discloses whether the identifier or the password was
// wrong; the only distinct failure is an unverified account with otherwise
// correct credentials.
func (s *accountService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrNotActivated
	}

	return user, nil
}

func (s *accountService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.Authenticate(ctx, req.Identifier, req.Password)
	if err != nil {
		return nil, err
	}

	accessToken, err := auth.NewSessionToken(
		user.ID,
		user.Username,
		user.Email,
		user.Role(),
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	s.publish(ctx, events.AccountLogin, events.AccountLoginEvent{
		UserID:   user.ID,
		Username: user.Username,
		LoginAt:  time.Now(),
	})

	return &domain.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.Auth.AccessTokenTTL.Seconds()),
		User:        user.ToUserInfo(),
	}, nil
}

func (s *accountService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *accountService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SendReminders emails each unverified account whose token is still valid
// and hasn't been reminded yet. A failed send leaves the flag unset so the
// next run retries; a sent reminder is never repeated.
func (s *accountService) SendReminders(ctx context.Context) (int, error) {
	targets, err := s.verifyRepo.ListReminderDue(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder targets: %w", err)
	}

	sent := 0
	for _, t := range targets {
		verifyURL := s.buildVerificationURL(t.Token)
		if err := s.mailer.SendVerificationReminder(t.Email, t.Username, verifyURL); err != nil {
			logger.ErrorContext(ctx, "Failed to send verification reminder", "error", err, "user_id", t.UserID)
			continue
		}
		if err := s.verifyRepo.MarkReminderSent(ctx, t.TokenID); err != nil {
			logger.ErrorContext(ctx, "Failed to mark reminder sent", "error", err, "token_id", t.TokenID)
			continue
		}
		sent++
	}

	return sent, nil
}

// PurgeExpiredTokens removes tokens past their validity window. Expired
// tokens are inert either way; this is housekeeping, not correctness.
func (s *accountService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	deleted, err := s.verifyRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return deleted, nil
}

func (s *accountService) buildVerificationURL(token string) string {
	return fmt.Sprintf("%s/v1/verify-email/%s", s.config.Site.BaseURL, token)
}

func (s *accountService) publish(ctx context.Context, subject string, data interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
