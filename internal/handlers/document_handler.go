package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jobreadyai/backend/internal/models"
	"github.com/jobreadyai/backend/internal/services"
	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/jobreadyai/backend/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// DocumentHandler serves CRUD and publishing over the caller's documents,
// plus the unauthenticated share endpoint.
type DocumentHandler struct {
	Service *services.DocumentService
}

// NewDocumentHandler creates a new instance of DocumentHandler.
func NewDocumentHandler(service *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		Service: service,
	}
}

type createDocumentRequest struct {
	Title         string                    `json:"title" validate:"required"`
	Type          string                    `json:"type" validate:"required"`
	Content       string                    `json:"content"`
	SourceRequest *models.GenerationRequest `json:"source_request"`
}

type updateDocumentRequest struct {
	Title         *string                   `json:"title"`
	Type          *string                   `json:"type"`
	Content       *string                   `json:"content"`
	SourceRequest *models.GenerationRequest `json:"source_request"`
}

// CreateDocumentHandler stores a new document for the caller.
func (h *DocumentHandler) CreateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: %v", httputil.ErrValidation, err))
		return
	}

	doc, err := h.Service.CreateDocument(r.Context(), claims.UserID, services.CreateDocumentInput{
		Title:         req.Title,
		Type:          req.Type,
		Content:       req.Content,
		SourceRequest: req.SourceRequest,
	})
	if err != nil {
		log.WithError(err).Warn("Document creation rejected")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, doc)
}

// UpdateDocumentHandler merges the provided fields into the caller's document.
func (h *DocumentHandler) UpdateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}
	docID := mux.Vars(r)["id"]

	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
		return
	}

	doc, err := h.Service.UpdateDocument(r.Context(), claims.UserID, docID, services.UpdateDocumentInput{
		Title:         req.Title,
		Type:          req.Type,
		Content:       req.Content,
		SourceRequest: req.SourceRequest,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, doc)
}

// DeleteDocumentHandler removes a document. Deleting an absent id succeeds.
func (h *DocumentHandler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}
	docID := mux.Vars(r)["id"]

	if err := h.Service.DeleteDocument(r.Context(), claims.UserID, docID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "Document deleted"})
}

// PublishDocumentHandler makes a portfolio reachable on its share link.
func (h *DocumentHandler) PublishDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}
	docID := mux.Vars(r)["id"]

	doc, err := h.Service.PublishDocument(r.Context(), claims.UserID, docID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, doc)
}

// ShareHandler serves a published document to anyone holding the link.
func (h *DocumentHandler) ShareHandler(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["id"]

	doc, err := h.Service.GetPublicDocument(r.Context(), docID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, doc)
}
