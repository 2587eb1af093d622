package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Account is an authenticated identity. Linking sessions to an account
// aggregates their progress for reward purposes.
type Account struct {
	ID            int64     `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	DisplayName   *string   `json:"displayName" db:"display_name"`
	RewardsEarned []string  `json:"rewardsEarned" db:"rewards_earned"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// AccountClaims are the JWT claims carried by the auth cookie.
type AccountClaims struct {
	AccountID int64  `json:"accountId"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
