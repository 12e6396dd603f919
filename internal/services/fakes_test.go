package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jobreadyai/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory stand-in for the Mongo repositories. It
// implements UserStore, LedgerStore and DocumentStore.
type fakeStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by email")
}

func (f *fakeStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user by id")
	}
	return u, nil
}

func (f *fakeStore) GetUserByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetToken != "" && u.ResetToken == token {
			return u, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by reset token")
}

func (f *fakeStore) UpdateUser(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("no user matched")
	}
	for key, value := range fields {
		switch key {
		case "hashed_password":
			u.HashedPassword = value.(string)
		case "reset_token":
			u.ResetToken = value.(string)
		case "reset_token_exp":
			u.ResetTokenExp = value.(time.Time)
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) ConsumeToken(_ context.Context, id primitive.ObjectID) (int, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, fmt.Errorf("failed to find user by id")
	}
	if u.Tokens > 0 {
		u.Tokens--
	}
	return u.Tokens, nil
}

func (f *fakeStore) UpgradePlan(_ context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("no user matched for upgrade")
	}
	u.Plan = models.PlanPro
	u.Tokens = models.ProTokenAllotment
	return nil
}

func (f *fakeStore) PrependDocument(_ context.Context, userID primitive.ObjectID, doc *models.Document) error {
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("owner not found")
	}
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()
	u.Documents = append([]models.Document{*doc}, u.Documents...)
	return nil
}

func (f *fakeStore) GetDocument(_ context.Context, userID, docID primitive.ObjectID) (*models.Document, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("failed to find document")
	}
	for i := range u.Documents {
		if u.Documents[i].ID == docID {
			return &u.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("failed to find document")
}

func (f *fakeStore) UpdateDocument(_ context.Context, userID, docID primitive.ObjectID, fields bson.M) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.Documents {
		if u.Documents[i].ID != docID {
			continue
		}
		doc := &u.Documents[i]
		for key, value := range fields {
			switch key {
			case "title":
				doc.Title = value.(string)
			case "type":
				doc.Type = value.(models.DocumentType)
			case "content":
				doc.Content = value.(string)
			case "is_public":
				doc.IsPublic = value.(bool)
			case "source_request":
				doc.SourceRequest = value.(*models.GenerationRequest)
			}
		}
		doc.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (f *fakeStore) RemoveDocument(_ context.Context, userID, docID primitive.ObjectID) error {
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	for i := range u.Documents {
		if u.Documents[i].ID == docID {
			u.Documents = append(u.Documents[:i], u.Documents[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) FindPublicDocument(_ context.Context, docID primitive.ObjectID) (*models.Document, error) {
	for _, u := range f.users {
		for i := range u.Documents {
			if u.Documents[i].ID == docID && u.Documents[i].IsPublic {
				return &u.Documents[i], nil
			}
		}
	}
	return nil, fmt.Errorf("failed to find public document")
}
