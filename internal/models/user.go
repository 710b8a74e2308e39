package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	TotalLent     float64   `json:"total_lent"`
	TotalBorrowed float64   `json:"total_borrowed"`
	NetBalance    float64   `json:"net_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser stamps id and timestamps at construction; balances start at zero.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

// RecalculateBalance rederives NetBalance from the running sums. It must be
// called whenever TotalLent or TotalBorrowed changes, before the user is
// persisted or the balance is read.
func (u *User) RecalculateBalance() {
	u.NetBalance = u.TotalLent - u.TotalBorrowed
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token,omitempty"`
}
