package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jobreadyai/backend/internal/models"
	"github.com/jobreadyai/backend/pkg/email"
	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserStore is the persistence surface the user service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}

// UserService encapsulates the business logic for accounts and sessions.
type UserService struct {
	repo       UserStore
	appBaseURL string
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, appBaseURL string) *UserService {
	return &UserService{
		repo:       repo,
		appBaseURL: appBaseURL,
	}
}

// RegisterUser creates a new account with the free plan and its signup token
// allotment. The welcome email is best-effort and never fails the request.
func (s *UserService) RegisterUser(ctx context.Context, name, userEmail, password string) (*models.User, error) {
	if name == "" || userEmail == "" || password == "" {
		return nil, fmt.Errorf("%w: missing required fields", httputil.ErrValidation)
	}
	if !emailRegex.MatchString(userEmail) {
		return nil, fmt.Errorf("%w: invalid email format", httputil.ErrValidation)
	}

	// Check if the email is already registered
	if existing, _ := s.repo.GetUserByEmail(ctx, userEmail); existing != nil {
		logrus.WithField("email", userEmail).Warn("Email already in use")
		return nil, fmt.Errorf("%w: email already in use", httputil.ErrConflict)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:           name,
		Email:          userEmail,
		HashedPassword: string(hashedPwd),
		Plan:           models.PlanFree,
		Tokens:         models.FreeTokenAllotment,
		Documents:      []models.Document{},
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	email.SendAsync(createdUser.Email, "Welcome to JobReadyAI",
		fmt.Sprintf("Hi %s,\n\nYour JobReadyAI account is ready. You have %d free generation tokens to get started.\n\n%s",
			createdUser.Name, models.FreeTokenAllotment, s.appBaseURL))

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"plan":   createdUser.Plan,
	}).Info("User registered successfully")

	return createdUser, nil
}

// AuthenticateUser verifies the email and password and returns the user if
// credentials are valid. Unknown email and wrong password are reported
// identically.
func (s *UserService) AuthenticateUser(ctx context.Context, userEmail, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logrus.WithField("email", userEmail).Warn("Login attempt for unknown email")
		return nil, fmt.Errorf("%w: invalid email or password", httputil.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", userEmail).Warn("Invalid credentials")
		return nil, fmt.Errorf("%w: invalid email or password", httputil.ErrInvalidCredentials)
	}

	email.SendAsync(user.Email, "New login to JobReadyAI",
		fmt.Sprintf("Hi %s,\n\nYour account was just signed in at %s. If this was not you, reset your password.",
			user.Name, time.Now().Format(time.RFC1123)))

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// RequestPasswordReset stores a single-use reset token and emails a link.
// It reports success whether or not the email belongs to an account, so the
// endpoint cannot be used to enumerate registered addresses.
func (s *UserService) RequestPasswordReset(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logrus.WithField("email", userEmail).Info("Password reset requested for unknown email")
		return nil
	}

	resetToken := uuid.NewString()
	expiration := time.Now().Add(1 * time.Hour)

	err = s.repo.UpdateUser(ctx, user.ID, bson.M{
		"reset_token":     resetToken,
		"reset_token_exp": expiration,
	})
	if err != nil {
		return fmt.Errorf("failed to save reset token: %v", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, resetToken)
	email.SendAsync(user.Email, "Reset your JobReadyAI password",
		fmt.Sprintf("Click the link below to reset your password. The link expires in one hour.\n\n%s", resetLink))

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset token issued")
	return nil
}

// ResetPassword redeems a reset token. Tokens are single-use: the token and
// its expiry are cleared on success.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: token and new password are required", httputil.ErrValidation)
	}

	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: invalid or expired reset token", httputil.ErrValidation)
	}
	if time.Now().After(user.ResetTokenExp) {
		return fmt.Errorf("%w: invalid or expired reset token", httputil.ErrValidation)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	err = s.repo.UpdateUser(ctx, user.ID, bson.M{
		"hashed_password": string(hashedPwd),
		"reset_token":     "",
		"reset_token_exp": time.Time{},
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset completed")
	return nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", httputil.ErrValidation)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", httputil.ErrNotFound)
	}
	return user, nil
}
