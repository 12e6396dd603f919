package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is the subscription tier of a user account.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Token allotments per plan. The free allotment is granted once at signup;
// the pro allotment replaces the balance at upgrade time. There is no
// accrual or rollover.
const (
	FreeTokenAllotment = 3
	ProTokenAllotment  = 100
)

// User represents a JobReadyAI account. Generated documents are embedded on
// the user record, newest first.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Plan           Plan               `bson:"plan" json:"plan"`
	Tokens         int                `bson:"tokens" json:"tokens"`
	Documents      []Document         `bson:"documents" json:"documents"`
	ResetToken     string             `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExp  time.Time          `bson:"reset_token_exp,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// CanAct reports whether the user may run a metered action.
func (u *User) CanAct() bool {
	return u.Plan == PlanPro || u.Tokens > 0
}
