// Package contact accepts contact form submissions and forwards them to the
// site inbox.
package contact

import (
	"context"
	"net/http"
	"strings"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/email"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/validation"
)

const msgSent = "Thanks for reaching out. We will get back to you shortly."

// Forwarder delivers a submission. Implemented by email.Service.
type Forwarder interface {
	SendContactNotification(ctx context.Context, msg email.ContactMessage) error
}

// Request is the contact form. Phone may be sent as a string or a number.
type Request struct {
	FirstName string              `json:"firstName" validate:"min=2" label:"First name"`
	LastName  string              `json:"lastName" validate:"min=2" label:"Last name"`
	Email     string              `json:"email" validate:"required,email" label:"Email"`
	Phone     httputil.FlexString `json:"phone" validate:"mindigits=10" msg:"Phone number must be at least 10 digits."`
	Message   string              `json:"message" validate:"min=10" label:"Message"`
}

type Service struct {
	forwarder Forwarder
}

// NewService builds a Service. With a nil forwarder submissions are only
// logged.
func NewService(forwarder Forwarder) *Service {
	return &Service{forwarder: forwarder}
}

func (s *Service) Submit(ctx context.Context, req Request) error {
	logger := logging.GetLoggerFromContext(ctx)

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := validation.Struct(&req); err != nil {
		return err
	}

	if s.forwarder == nil {
		logger.Warn("contact form received but mail is not configured", "email", req.Email)
		return nil
	}

	err := s.forwarder.SendContactNotification(ctx, email.ContactMessage{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone.String(),
		Message:   req.Message,
	})
	if err != nil {
		return apperr.Internal("Failed to send message", err)
	}

	logger.Info("contact form forwarded", "email", req.Email)
	return nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type Response struct {
	Message string `json:"message"`
}

// Submit handles the contact form
// @Summary      Send a contact message
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        request body Request true "Contact form"
// @Success      200 {object} httputil.Envelope{data=Response}
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      429 {object} httputil.Envelope "Too many requests"
// @Failure      500 {object} httputil.Envelope "Failed to send message"
// @Router       /contact [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}

	if err := h.service.Submit(r.Context(), req); err != nil {
		httputil.RespondError(w, r, err, httputil.Nested)
		return
	}

	httputil.RespondData(w, Response{Message: msgSent}, http.StatusOK)
}
