package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/models"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service       *Service
	tokens        TokenService
	revoker       TokenRevoker
	isProduction  bool
	tokenDuration time.Duration
}

// NewHandler builds the auth handlers. revoker may be nil.
func NewHandler(service *Service, tokens TokenService, revoker TokenRevoker, isProduction bool, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       service,
		tokens:        tokens,
		revoker:       revoker,
		isProduction:  isProduction,
		tokenDuration: tokenDuration,
	}
}

// SignInResponse is the data of a successful credential sign-in. Token is
// omitted when it was set as a cookie.
type SignInResponse struct {
	Message string       `json:"message"`
	User    *UserSummary `json:"user"`
	Token   string       `json:"token,omitempty"`
}

// OAuthSignInResponse is the body of a successful OAuth sign-in.
type OAuthSignInResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignUp handles credential registration
// @Summary      Sign up with email and password
// @Description  Create a user and its credentials account in one transaction.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignUpRequest true "Sign-up form"
// @Success      201 {object} httputil.Envelope{data=SignUpResult}
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "User already exists"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /sign-up [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignUpRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	res, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		logger.Warn("sign-up failed", "error", err.Error())
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	httputil.RespondData(w, res, http.StatusCreated)
}

// SignIn handles credential sign-in
// @Summary      Sign in with email and password
// @Description  Verify credentials and issue a session token. Browsers get it as an HttpOnly cookie, API clients (X-Client-Type: api) in the body.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} httputil.Envelope{data=SignInResponse}
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Invalid password"
// @Failure      404 {object} httputil.ErrorResponse "User or account not found"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /sign-in [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignInRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	summary, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		logger.Warn("sign-in failed", "error", err.Error())
		httputil.RespondError(w, r, err, httputil.Flat)
		return
	}

	token, _, err := h.tokens.CreateToken(summary.ID, summary.Email, h.tokenDuration)
	if err != nil {
		httputil.RespondError(w, r, apperr.Internal("Failed to sign in", err), httputil.Flat)
		return
	}

	logger.Info("user signed in", "user_id", summary.ID)

	resp := SignInResponse{Message: "Sign in successful", User: summary}
	if ShouldUseCookies(r) {
		SetAuthCookie(w, token, h.isProduction, h.tokenDuration)
	} else {
		resp.Token = token
	}
	httputil.RespondData(w, resp, http.StatusOK)
}

// SignOut revokes the current session token
// @Summary      Sign out
// @Description  Revoke the session token until it expires and clear the session cookie.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope{data=MessageResponse}
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /sign-out [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if claims, ok := GetClaimsFromContext(r.Context()); ok && h.revoker != nil {
		if err := h.revoker.RevokeToken(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
			httputil.RespondError(w, r, apperr.Internal("Failed to sign out", err), httputil.Flat)
			return
		}
	}

	ClearAuthCookie(w, h.isProduction)
	logger.Info("user signed out")

	httputil.RespondData(w, MessageResponse{Message: "Signed out"}, http.StatusOK)
}

// SignInWithOAuth reconciles an OAuth identity with the user store
// @Summary      Reconcile an OAuth sign-in
// @Description  Create or update the user for the provider email and link the provider account. Called by the OAuth front end with provider claims it already verified.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string false "Internal API key"
// @Param        request body OAuthSignInRequest true "Provider claims"
// @Success      200 {object} OAuthSignInResponse
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      401 {object} httputil.Envelope "Invalid API key"
// @Failure      409 {object} httputil.Envelope "Account linked to another user"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /sign-in-with-oauth [post]
func (h *Handler) SignInWithOAuth(w http.ResponseWriter, r *http.Request) {
	var req OAuthSignInRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}

	u, err := h.service.SignInWithOAuth(r.Context(), req)
	if err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}

	httputil.RespondJSON(w, OAuthSignInResponse{
		Success: true,
		Message: "Authentication successful",
		User:    u,
	}, http.StatusOK)
}

// Me returns the signed-in user
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope{data=models.User}
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, r, apperr.Unauthorized("Authentication required").WithCode(httputil.CodeMissingAuth), httputil.Nested)
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}

	httputil.RespondData(w, u, http.StatusOK)
}

// GetUser returns a user by id. Only the caller's own record is visible;
// any other id reads as not found.
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} httputil.Envelope{data=models.User}
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if callerID, _ := GetUserIDFromContext(r.Context()); id != callerID {
		httputil.RespondError(w, r, apperr.NotFound(msgUserNotFound).WithCode(httputil.CodeUserNotFound), httputil.Nested)
		return
	}

	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}
	httputil.RespondData(w, u, http.StatusOK)
}

// GetAccountByProvider looks an account up by its provider account id.
// Accounts owned by another user read as not found.
// @Summary      Get account by provider account id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        providerAccountId path string true "Provider account ID"
// @Success      200 {object} httputil.Envelope{data=models.Account}
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Failure      404 {object} httputil.Envelope "Account not found"
// @Router       /accounts/by-provider/{providerAccountId} [get]
func (h *Handler) GetAccountByProvider(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetAccountByProviderAccountID(r.Context(), chi.URLParam(r, "providerAccountId"))
	if err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}
	if callerID, _ := GetUserIDFromContext(r.Context()); a.UserID != callerID {
		httputil.RespondError(w, r, apperr.NotFound(msgAccountNotFound).WithCode(httputil.CodeAccountNotFound), httputil.Nested)
		return
	}
	httputil.RespondData(w, a, http.StatusOK)
}
