package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jobreadyai/backend/internal/generation"
	"github.com/jobreadyai/backend/internal/models"
	"github.com/jobreadyai/backend/internal/services"
	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/jobreadyai/backend/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// GenerateHandler is the token-gated server-side generation endpoint.
type GenerateHandler struct {
	Generator   generation.Client
	PlanService *services.PlanService
}

// NewGenerateHandler creates a new instance of GenerateHandler.
func NewGenerateHandler(generator generation.Client, planService *services.PlanService) *GenerateHandler {
	return &GenerateHandler{
		Generator:   generator,
		PlanService: planService,
	}
}

type generateRequest struct {
	Type    string                    `json:"type" validate:"required"`
	Request *models.GenerationRequest `json:"request" validate:"required"`
}

// GenerateDocumentHandler produces document HTML for the caller. Free users
// must hold a positive token balance; one token is consumed per successful
// generation.
func (h *GenerateHandler) GenerateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: %v", httputil.ErrValidation, err))
		return
	}

	docType, err := models.NormalizeDocumentType(req.Type)
	if err != nil {
		httputil.Error(w, fmt.Errorf("%w: %v", httputil.ErrValidation, err))
		return
	}

	allowed, err := h.PlanService.CanAct(r.Context(), claims.UserID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if !allowed {
		httputil.Error(w, fmt.Errorf("%w: out of tokens, upgrade to continue", httputil.ErrPaymentRequired))
		return
	}

	html, err := h.Generator.Generate(r.Context(), docType, req.Request)
	if err != nil {
		log.WithError(err).Error("Generation failed")
		if errors.Is(err, generation.ErrInvalidCredential) {
			httputil.Error(w, fmt.Errorf("%w: generation credential rejected", httputil.ErrUpstream))
			return
		}
		httputil.Error(w, fmt.Errorf("%w: generation service unavailable", httputil.ErrUpstream))
		return
	}

	remaining, err := h.PlanService.Consume(r.Context(), claims.UserID)
	if err != nil {
		// The document was produced; a failed decrement only affects metering.
		log.WithError(err).Error("Failed to consume token after generation")
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"content": html,
		"type":    docType,
		"tokens":  remaining,
	})
}
