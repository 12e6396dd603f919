package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobreadyai/backend/internal/models"
	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentStore is the persistence surface the document service depends on.
type DocumentStore interface {
	PrependDocument(ctx context.Context, userID primitive.ObjectID, doc *models.Document) error
	GetDocument(ctx context.Context, userID, docID primitive.ObjectID) (*models.Document, error)
	UpdateDocument(ctx context.Context, userID, docID primitive.ObjectID, fields bson.M) (bool, error)
	RemoveDocument(ctx context.Context, userID, docID primitive.ObjectID) error
	FindPublicDocument(ctx context.Context, docID primitive.ObjectID) (*models.Document, error)
}

// DocumentService encapsulates CRUD and publishing over a user's documents.
type DocumentService struct {
	repo DocumentStore
}

// NewDocumentService creates a new instance of DocumentService.
func NewDocumentService(repo DocumentStore) *DocumentService {
	return &DocumentService{
		repo: repo,
	}
}

// CreateDocumentInput carries the fields accepted on document creation.
type CreateDocumentInput struct {
	Title         string
	Type          string
	Content       string
	SourceRequest *models.GenerationRequest
}

// UpdateDocumentInput carries the optional fields of a document update.
// Nil pointers mean "leave unchanged".
type UpdateDocumentInput struct {
	Title         *string
	Type          *string
	Content       *string
	SourceRequest *models.GenerationRequest
}

// CreateDocument validates and stores a new document at the front of the
// owner's list. Portfolios are shareable by default; every other type starts
// private.
func (s *DocumentService) CreateDocument(ctx context.Context, userID string, input CreateDocumentInput) (*models.Document, error) {
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", httputil.ErrValidation)
	}

	docType, err := models.NormalizeDocumentType(input.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httputil.ErrValidation, err)
	}

	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", httputil.ErrValidation)
	}

	if err := validateImageReferences(input.SourceRequest); err != nil {
		return nil, err
	}

	doc := &models.Document{
		Title:         input.Title,
		Type:          docType,
		Content:       input.Content,
		IsPublic:      docType == models.TypePortfolio,
		SourceRequest: input.SourceRequest,
	}

	if err := s.repo.PrependDocument(ctx, ownerID, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %v", err)
	}
	return doc, nil
}

// UpdateDocument merges the provided fields into an existing document owned
// by the caller. Absent fields are left unchanged.
func (s *DocumentService) UpdateDocument(ctx context.Context, userID, docID string, input UpdateDocumentInput) (*models.Document, error) {
	ownerID, documentID, err := parseOwnerAndDoc(userID, docID)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", httputil.ErrValidation)
		}
		fields["title"] = *input.Title
	}
	if input.Type != nil {
		docType, err := models.NormalizeDocumentType(*input.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", httputil.ErrValidation, err)
		}
		fields["type"] = docType
		if docType != models.TypePortfolio {
			// Only portfolios may ever be public; a document that stops
			// being a portfolio drops off its share link.
			fields["is_public"] = false
		}
	}
	if input.Content != nil {
		fields["content"] = *input.Content
	}
	if input.SourceRequest != nil {
		if err := validateImageReferences(input.SourceRequest); err != nil {
			return nil, err
		}
		fields["source_request"] = input.SourceRequest
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", httputil.ErrValidation)
	}

	matched, err := s.repo.UpdateDocument(ctx, ownerID, documentID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %v", err)
	}
	if !matched {
		return nil, fmt.Errorf("%w: document not found", httputil.ErrNotFound)
	}

	doc, err := s.repo.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload document: %v", err)
	}
	return doc, nil
}

// DeleteDocument removes a document from the caller's list. Deleting an
// already-absent document succeeds.
func (s *DocumentService) DeleteDocument(ctx context.Context, userID, docID string) error {
	ownerID, documentID, err := parseOwnerAndDoc(userID, docID)
	if err != nil {
		return err
	}

	if err := s.repo.RemoveDocument(ctx, ownerID, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %v", err)
	}
	return nil
}

// PublishDocument flips a portfolio's share flag on. Publishing is one-way
// and only portfolios may ever be public.
func (s *DocumentService) PublishDocument(ctx context.Context, userID, docID string) (*models.Document, error) {
	ownerID, documentID, err := parseOwnerAndDoc(userID, docID)
	if err != nil {
		return nil, err
	}

	doc, err := s.repo.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: document not found", httputil.ErrNotFound)
	}

	if doc.Type != models.TypePortfolio {
		logrus.WithFields(logrus.Fields{
			"docID": docID,
			"type":  doc.Type,
		}).Warn("Publish rejected for non-portfolio document")
		return nil, fmt.Errorf("%w: only portfolio documents can be published", httputil.ErrInvalidOperation)
	}

	if _, err := s.repo.UpdateDocument(ctx, ownerID, documentID, bson.M{"is_public": true}); err != nil {
		return nil, fmt.Errorf("failed to publish document: %v", err)
	}

	doc.IsPublic = true
	return doc, nil
}

// GetPublicDocument serves the unauthenticated share link. Only published
// documents are readable; everything else is reported as not found so the
// endpoint leaks nothing about private documents.
func (s *DocumentService) GetPublicDocument(ctx context.Context, docID string) (*models.Document, error) {
	documentID, err := primitive.ObjectIDFromHex(docID)
	if err != nil {
		return nil, fmt.Errorf("%w: document not found", httputil.ErrNotFound)
	}

	doc, err := s.repo.FindPublicDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: document not found", httputil.ErrNotFound)
	}
	return doc, nil
}

func parseOwnerAndDoc(userID, docID string) (primitive.ObjectID, primitive.ObjectID, error) {
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("%w: invalid user id", httputil.ErrValidation)
	}
	documentID, err := primitive.ObjectIDFromHex(docID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("%w: invalid document id", httputil.ErrValidation)
	}
	return ownerID, documentID, nil
}

// validateImageReferences rejects any image reference that is not a
// server-relative /uploads/ path, so generated pages can never hot-link
// arbitrary external sources.
func validateImageReferences(req *models.GenerationRequest) error {
	if req == nil {
		return nil
	}

	check := func(path string) error {
		if path == "" {
			return nil
		}
		if !strings.HasPrefix(path, "/uploads/") || strings.Contains(path, "..") {
			return fmt.Errorf("%w: image references must be server upload paths", httputil.ErrValidation)
		}
		return nil
	}

	for _, path := range req.ImagePaths {
		if err := check(path); err != nil {
			return err
		}
	}
	for _, items := range [][]models.PortfolioItem{req.Projects, req.Products, req.Certifications} {
		for _, item := range items {
			if err := check(item.Image); err != nil {
				return err
			}
		}
	}
	return nil
}
