package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jobreadyai/backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentRepository operates on the documents array embedded in each user
// record. Documents never live in their own collection; every operation is
// scoped to the owning user except the public share lookup.
type DocumentRepository struct {
	collection *mongo.Collection
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{
		collection: db.Collection("users"),
	}
}

// PrependDocument inserts a document at the front of the owner's list so the
// dashboard lists newest first.
func (r *DocumentRepository) PrependDocument(ctx context.Context, userID primitive.ObjectID, doc *models.Document) error {
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{
				"documents": bson.M{
					"$each":     []*models.Document{doc},
					"$position": 0,
				},
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert document")
		return fmt.Errorf("failed to insert document: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("owner not found")
	}

	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"docID":  doc.ID.Hex(),
		"type":   doc.Type,
	}).Info("Document created")
	return nil
}

// GetDocument fetches a single document from the owner's list.
func (r *DocumentRepository) GetDocument(ctx context.Context, userID, docID primitive.ObjectID) (*models.Document, error) {
	var user models.User
	err := r.collection.FindOne(ctx,
		bson.M{"_id": userID, "documents._id": docID},
	).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %v", err)
	}

	for i := range user.Documents {
		if user.Documents[i].ID == docID {
			return &user.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("document missing from decoded user")
}

// UpdateDocument applies a field-level update to one embedded document.
// Only the provided fields are touched, so concurrent edits to different
// fields do not clobber each other.
func (r *DocumentRepository) UpdateDocument(ctx context.Context, userID, docID primitive.ObjectID, fields bson.M) (bool, error) {
	set := bson.M{"documents.$.updated_at": time.Now()}
	for key, value := range fields {
		set["documents.$."+key] = value
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "documents._id": docID},
		bson.M{"$set": set},
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to update document")
		return false, fmt.Errorf("failed to update document: %v", err)
	}
	return result.MatchedCount > 0, nil
}

// RemoveDocument pulls a document from the owner's list. Removing an absent
// document is not an error.
func (r *DocumentRepository) RemoveDocument(ctx context.Context, userID, docID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"documents": bson.M{"_id": docID}}},
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to remove document")
		return fmt.Errorf("failed to remove document: %v", err)
	}
	return nil
}

// FindPublicDocument looks a document up by id across all users, returning it
// only when its owner has published it.
func (r *DocumentRepository) FindPublicDocument(ctx context.Context, docID primitive.ObjectID) (*models.Document, error) {
	var user models.User
	err := r.collection.FindOne(ctx,
		bson.M{"documents": bson.M{"$elemMatch": bson.M{"_id": docID, "is_public": true}}},
	).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find public document: %v", err)
	}

	for i := range user.Documents {
		if user.Documents[i].ID == docID {
			return &user.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("document missing from decoded user")
}
