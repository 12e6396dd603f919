package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jobreadyai/backend/internal/services"
	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/jobreadyai/backend/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// UserHandler serves the authenticated account endpoints: profile, token
// consumption and plan upgrade.
type UserHandler struct {
	UserService *services.UserService
	PlanService *services.PlanService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(userService *services.UserService, planService *services.PlanService) *UserHandler {
	return &UserHandler{
		UserService: userService,
		PlanService: planService,
	}
}

// MeHandler returns the caller's own record, documents included.
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, user)
}

// ConsumeTokenHandler spends one generation token. At zero balance it is a
// no-op; clients gate on the balance before calling generate.
func (h *UserHandler) ConsumeTokenHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}

	remaining, err := h.PlanService.Consume(r.Context(), claims.UserID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int{"tokens": remaining})
}

// UpgradePlanHandler commits a plan upgrade after the checkout flow.
func (h *UserHandler) UpgradePlanHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}

	// Body is optional for backwards compatibility with the widget-trusting
	// flow; the transaction reference is required once verification is on.
	var req struct {
		TransactionID string `json:"transaction_id"`
		Currency      string `json:"currency"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
			return
		}
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	user, err := h.PlanService.Upgrade(r.Context(), claims.UserID, req.TransactionID, req.Currency)
	if err != nil {
		log.WithError(err).Warn("Plan upgrade rejected")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, user)
}
