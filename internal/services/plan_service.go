package services

import (
	"context"
	"fmt"

	"github.com/jobreadyai/backend/internal/models"
	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LedgerStore is the persistence surface the plan service depends on.
type LedgerStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ConsumeToken(ctx context.Context, id primitive.ObjectID) (int, error)
	UpgradePlan(ctx context.Context, id primitive.ObjectID) error
}

// PaymentVerifier confirms a checkout transaction against the payment
// provider before the ledger is mutated. Nil disables verification, which
// preserves the client-trusting behavior for local development.
type PaymentVerifier interface {
	Verify(ctx context.Context, txID string, expectedAmount float64, currency string) error
}

// ProPlanPriceUSD is the monthly price the checkout widget charges.
const ProPlanPriceUSD = 9.99

// PlanService owns the plan/token ledger: consume, gating and upgrade.
type PlanService struct {
	repo     LedgerStore
	verifier PaymentVerifier
}

// NewPlanService creates a new instance of PlanService.
func NewPlanService(repo LedgerStore, verifier PaymentVerifier) *PlanService {
	return &PlanService{
		repo:     repo,
		verifier: verifier,
	}
}

// Consume decrements the caller's token balance by one, floored at zero.
// At zero the call is a silent no-op; callers are expected to gate on CanAct
// before spending work.
func (s *PlanService) Consume(ctx context.Context, userID string) (int, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid user id", httputil.ErrValidation)
	}

	remaining, err := s.repo.ConsumeToken(ctx, objID)
	if err != nil {
		return 0, fmt.Errorf("failed to consume token: %v", err)
	}
	return remaining, nil
}

// CanAct reports whether the user may run a metered action right now.
func (s *PlanService) CanAct(ctx context.Context, userID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, fmt.Errorf("%w: invalid user id", httputil.ErrValidation)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return false, fmt.Errorf("%w: user not found", httputil.ErrNotFound)
	}
	return user.CanAct(), nil
}

// Upgrade moves the user to the pro plan and resets the balance to the pro
// allotment. When a payment verifier is configured the supplied transaction
// reference must check out against the provider first.
func (s *PlanService) Upgrade(ctx context.Context, userID, transactionID, currency string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", httputil.ErrValidation)
	}

	if s.verifier != nil {
		if transactionID == "" {
			return nil, fmt.Errorf("%w: missing transaction reference", httputil.ErrValidation)
		}
		if err := s.verifier.Verify(ctx, transactionID, ProPlanPriceUSD, currency); err != nil {
			logrus.WithFields(logrus.Fields{
				"userID": userID,
				"txID":   transactionID,
				"error":  err,
			}).Warn("Payment verification failed")
			return nil, err
		}
	}

	if err := s.repo.UpgradePlan(ctx, objID); err != nil {
		return nil, fmt.Errorf("failed to upgrade plan: %v", err)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upgraded user: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": userID,
		"plan":   user.Plan,
		"tokens": user.Tokens,
	}).Info("Plan upgrade committed")
	return user, nil
}
