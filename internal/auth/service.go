package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/models"
	"github.com/devextech/devex-api/internal/validation"
)

const (
	msgUserExists       = "User already exists"
	msgUserNotFound     = "User not found"
	msgAccountNotFound  = "Account not found"
	msgInvalidPassword  = "Invalid password"
	msgInvalidCreds     = "Invalid credentials"
	msgSignUpSucceeded  = "Account created successfully. Please sign in."
	msgSignUpFailed     = "Failed to create account"
	msgSignInFailed     = "Failed to sign in"
	welcomeEmailTimeout = 30 * time.Second
)

// Options tunes Service behaviour.
type Options struct {
	// UniformSignInErrors reports every credential failure as
	// "Invalid credentials".
	UniformSignInErrors bool
	// OAuthProviders lists accepted OAuth provider names.
	OAuthProviders []string
}

// Service implements credential sign-up/sign-in and OAuth reconciliation.
type Service struct {
	store    database.Store
	hasher   Hasher
	notifier Notifier
	logger   *logging.Logger
	opts     Options

	dummyOnce sync.Once
	dummyHash string
}

// NewService builds a Service. notifier may be nil.
func NewService(store database.Store, hasher Hasher, notifier Notifier, logger *logging.Logger, opts Options) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// SignUpRequest is the credential registration form.
type SignUpRequest struct {
	FirstName       string              `json:"firstName" validate:"min=2" label:"First name"`
	LastName        string              `json:"lastName" validate:"min=2" label:"Last name"`
	Email           string              `json:"email" validate:"required,email" label:"Email"`
	Password        string              `json:"password" validate:"min=8" label:"Password"`
	ConfirmPassword string              `json:"confirmPassword" validate:"eqfield=Password" msg:"Passwords do not match."`
	Contact         httputil.FlexString `json:"contact,omitempty" validate:"omitempty,mindigits=10" label:"Contact number"`
	Organization    string              `json:"organization,omitempty"`
	Address         string              `json:"address,omitempty"`
	Terms           bool                `json:"terms" validate:"required" msg:"You must accept the terms and conditions."`
}

// SignUpResult is returned on successful registration.
type SignUpResult struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SignInRequest is the credential sign-in form.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

func errUserExists() *apperr.Error {
	return apperr.Conflict(msgUserExists).WithCode(httputil.CodeUserExists)
}

// SignUp creates a User and its credentials Account in one transaction.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	logger := logging.GetLoggerFromContext(ctx)

	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().GetByEmail(ctx, req.Email); err == nil {
		return nil, errUserExists()
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, apperr.Internal(msgSignUpFailed, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal(msgSignUpFailed, err)
	}

	var created *models.User
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		u, err := repos.Users().Create(ctx, &models.User{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Contact:      req.Contact.String(),
			Organization: req.Organization,
			Address:      req.Address,
		})
		if err != nil {
			return err
		}

		if _, err := repos.Accounts().Create(ctx, &models.Account{
			UserID:            u.ID,
			Type:              models.AccountTypeCredentials,
			Provider:          models.ProviderCredentials,
			ProviderAccountID: req.Email,
			Name:              u.FullName(),
			PasswordHash:      hash,
		}); err != nil {
			return err
		}

		created = u
		return nil
	})
	if err != nil {
		// a concurrent sign-up for the same email won the unique index
		if errors.Is(err, database.ErrDuplicate) {
			return nil, errUserExists()
		}
		return nil, apperr.Internal(msgSignUpFailed, err)
	}

	logger.Info("user signed up", "user_id", created.ID)
	s.sendWelcome(created)

	return &SignUpResult{Email: created.Email, Message: msgSignUpSucceeded}, nil
}

// SignIn checks email and password. It issues no token.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*UserSummary, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	u, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.burnHash(req.Password)
			return nil, s.signInFailure(apperr.NotFound(msgUserNotFound).WithCode(httputil.CodeUserNotFound))
		}
		return nil, apperr.Internal(msgSignInFailed, err)
	}

	account, err := s.store.Accounts().GetByProvider(ctx, models.ProviderCredentials, req.Email)
	if err == nil && account.UserID != u.ID {
		err = database.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.burnHash(req.Password)
			return nil, s.signInFailure(apperr.NotFound(msgAccountNotFound).WithCode(httputil.CodeAccountNotFound))
		}
		return nil, apperr.Internal(msgSignInFailed, err)
	}

	if !s.hasher.Verify(account.PasswordHash, req.Password) {
		return nil, s.signInFailure(apperr.Authentication(msgInvalidPassword).WithCode(httputil.CodeInvalidCredentials))
	}

	return summarize(u), nil
}

func (s *Service) signInFailure(distinct *apperr.Error) *apperr.Error {
	if s.opts.UniformSignInErrors {
		return apperr.Authentication(msgInvalidCreds).WithCode(httputil.CodeInvalidCredentials)
	}
	return distinct
}

// burnHash spends one hash comparison so unknown emails take as long as
// wrong passwords. Only used when failures are reported uniformly.
func (s *Service) burnHash(password string) {
	if !s.opts.UniformSignInErrors {
		return
	}
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("devex-timing-equalizer")
	})
	_ = s.hasher.Verify(s.dummyHash, password)
}

func (s *Service) sendWelcome(u *models.User) {
	if s.notifier == nil {
		return
	}
	// detached from the request so the response is not held up
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), welcomeEmailTimeout)
		defer cancel()
		ctx = logging.ContextWithLogger(ctx, s.logger)
		if err := s.notifier.SendWelcomeEmail(ctx, u.Email, u.FirstName); err != nil {
			s.logger.Warn("welcome email failed", "user_id", u.ID, "error", err.Error())
		}
	}()
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgUserNotFound).WithCode(httputil.CodeUserNotFound)
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	return u, nil
}

// GetAccountByProviderAccountID returns the account with that provider
// account id (the email for credentials accounts).
func (s *Service) GetAccountByProviderAccountID(ctx context.Context, providerAccountID string) (*models.Account, error) {
	a, err := s.store.Accounts().GetByProviderAccountID(ctx, providerAccountID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgAccountNotFound).WithCode(httputil.CodeAccountNotFound)
		}
		return nil, apperr.Internal("Failed to load account", err)
	}
	return a, nil
}
