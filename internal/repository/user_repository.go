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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %v", err)
	}
	return nil
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}

	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %v", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %v", err)
	}
	return &user, nil
}

// GetUserByResetToken retrieves a user holding the given password reset token.
func (r *UserRepository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"reset_token": token}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by reset token: %v", err)
	}
	return &user, nil
}

// UpdateUser applies a partial field update to an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// ConsumeToken atomically decrements the token balance by one, floored at
// zero. The filter guards the decrement so the balance can never go negative;
// at zero the call is a silent no-op. Returns the post-call balance.
func (r *UserRepository) ConsumeToken(ctx context.Context, id primitive.ObjectID) (int, error) {
	after := options.After
	var user models.User
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "tokens": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"tokens": -1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&user)

	if err == mongo.ErrNoDocuments {
		// Either the user is unknown or the balance is already zero.
		existing, lookupErr := r.GetUserByID(ctx, id)
		if lookupErr != nil {
			return 0, lookupErr
		}
		return existing.Tokens, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume token: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": id.Hex(),
		"tokens": user.Tokens,
	}).Info("Token consumed")
	return user.Tokens, nil
}

// UpgradePlan moves the user to the pro plan and resets the token balance to
// the pro allotment, regardless of prior state.
func (r *UserRepository) UpgradePlan(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"plan":       models.PlanPro,
			"tokens":     models.ProTokenAllotment,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upgrade plan: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no user matched for upgrade")
	}

	logrus.WithField("userID", id.Hex()).Info("Plan upgraded to pro")
	return nil
}

// ClearExpiredResetTokens removes reset tokens whose expiry has passed.
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{
			"reset_token":     bson.M{"$ne": ""},
			"reset_token_exp": bson.M{"$lt": time.Now()},
		},
		bson.M{"$unset": bson.M{"reset_token": "", "reset_token_exp": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %v", err)
	}
	return result.ModifiedCount, nil
}
