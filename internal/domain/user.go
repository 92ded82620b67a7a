package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is an account that can create and enter lotteries. Its ID is the
// identity the lottery core sees for every call the user makes.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanPlay reports whether the account may log in and act in lotteries.
func (u *User) CanPlay() bool {
	return u.Status == UserStatusActive
}
