package auth

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/models"
	"github.com/devextech/devex-api/internal/validation"
)

const msgOAuthFailed = "Failed to sign in with OAuth"

// OAuthUser is the profile the identity provider returned.
type OAuthUser struct {
	Name     string `json:"name" validate:"required" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Image    string `json:"image,omitempty" validate:"omitempty,url" label:"Image"`
	Username string `json:"username,omitempty"`
}

// OAuthSignInRequest carries already-verified provider claims.
type OAuthSignInRequest struct {
	Provider          string    `json:"provider" validate:"required" label:"Provider"`
	ProviderAccountID string    `json:"providerAccountId" validate:"required" label:"Provider account ID"`
	User              OAuthUser `json:"user"`
}

// SplitName splits a display name at its first space. The last name is
// empty when there is no space.
func SplitName(name string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(name), " ")
	return first, last
}

// SignInWithOAuth makes sure a User exists for the provider email and that
// the provider account is linked to it. Repeating a call with the same
// claims writes nothing.
func (s *Service) SignInWithOAuth(ctx context.Context, req OAuthSignInRequest) (*models.User, error) {
	logger := logging.GetLoggerFromContext(ctx)

	req.User.Name = strings.TrimSpace(req.User.Name)
	req.User.Email = strings.TrimSpace(req.User.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	if len(s.opts.OAuthProviders) > 0 && !slices.Contains(s.opts.OAuthProviders, req.Provider) {
		msg := "Provider must be one of: " + strings.Join(s.opts.OAuthProviders, ", ") + "."
		return nil, apperr.Validation(msg, map[string][]string{"provider": {msg}})
	}

	firstName, lastName := SplitName(req.User.Name)

	var result *models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		u, err := repos.Users().GetByEmail(ctx, req.User.Email)
		switch {
		case errors.Is(err, database.ErrNotFound):
			u, err = repos.Users().Create(ctx, &models.User{
				FirstName: firstName,
				LastName:  lastName,
				Email:     req.User.Email,
				Image:     req.User.Image,
			})
			if err != nil {
				return err
			}
			logger.Info("oauth user created", "user_id", u.ID, "provider", req.Provider)
		case err != nil:
			return err
		case u.FirstName != firstName || u.LastName != lastName:
			if err := repos.Users().UpdateName(ctx, u.ID, firstName, lastName); err != nil {
				return err
			}
			u.FirstName, u.LastName = firstName, lastName
		}

		_, err = repos.Accounts().GetByUserAndProvider(ctx, u.ID, req.Provider, req.ProviderAccountID)
		if errors.Is(err, database.ErrNotFound) {
			_, err = repos.Accounts().Create(ctx, &models.Account{
				UserID:            u.ID,
				Type:              models.AccountTypeOAuth,
				Provider:          req.Provider,
				ProviderAccountID: req.ProviderAccountID,
				Name:              strings.TrimSpace(firstName + " " + lastName),
			})
			if err == nil {
				logger.Info("oauth account linked", "user_id", u.ID, "provider", req.Provider)
			}
		}
		if err != nil {
			return err
		}

		result = u
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict("Account is already linked to another user").WithCode(httputil.CodeConflict)
		}
		return nil, apperr.Internal(msgOAuthFailed, err)
	}

	return result, nil
}
