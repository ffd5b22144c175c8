package profile

import (
	"context"
	"errors"
	"time"
)

// Roles.
const (
	RoleHOC     = "HOC"
	RoleStudent = "student"
)

var (
	// ErrNotFound means no profile matched.
	ErrNotFound = errors.New("profile not found")
	// ErrBadCredentials means the matric/password pair did not match.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrMatricTaken means the matric number is already registered.
	ErrMatricTaken = errors.New("matric number already registered")
)

// Profile is a registered identity. Signature is an opaque image blob
// (data URL); it is set once at registration and never interpreted here.
type Profile struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FullName   string    `json:"full_name"`
	MatricNo   string    `json:"matric_no"`
	Level      string    `json:"level"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	Signature  string    `json:"signature,omitempty"`
}

// Directory is the identity store.
type Directory interface {
	Create(ctx context.Context, p Profile, password string) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
	GetByCredentials(ctx context.Context, matricNo, password string) (Profile, error)
	ListStudentsByDepartment(ctx context.Context, department string) ([]Profile, error)
	UpdateLevel(ctx context.Context, id, level string) error
}
