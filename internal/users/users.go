package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)

// User is a facility account: a resident applying for passes, a warden
// deciding them, or a guard verifying them at the gate. Profile fields carry
// what the original application showed on the profile pages.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	Name         string
	PhoneNumber  string
	RoomNo       string
	Hostel       string
	CreatedAt    time.Time
}

// Store is the storage collaborator for user records.
type Store interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}
