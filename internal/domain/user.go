package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleManager Role = "manager"
)

// Roles lists every accepted role in display order.
var Roles = []Role{RoleAdmin, RoleManager, RoleUser}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleManager:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusPending}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// ParseRole rejects anything outside the role enum.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// User is the record served by the users backend. ID and timestamps are server-assigned.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserCreateData struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"` // server default when empty
}

// UserUpdateData carries a partial update: a nil field is not transmitted and means "no change".
type UserUpdateData struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

// Normalize drops an empty password so it is never sent to the backend.
func (d UserUpdateData) Normalize() UserUpdateData {
	if d.Password != nil && *d.Password == "" {
		d.Password = nil
	}
	return d
}

func (d UserUpdateData) IsEmpty() bool {
	d = d.Normalize()
	return d.Username == nil && d.Email == nil && d.Name == nil &&
		d.Password == nil && d.Role == nil && d.Status == nil
}

// Apply copies the supplied fields onto u. Password is not part of User and is ignored.
func (d UserUpdateData) Apply(u *User) {
	if d.Username != nil {
		u.Username = *d.Username
	}
	if d.Email != nil {
		u.Email = *d.Email
	}
	if d.Name != nil {
		u.Name = *d.Name
	}
	if d.Role != nil {
		u.Role = *d.Role
	}
	if d.Status != nil {
		u.Status = *d.Status
	}
}

// DeleteResult is the confirmation object returned by a delete.
type DeleteResult struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("username already taken")
)

// UserRepository is the typed contract every users backend client implements.
// Each call is attempted exactly once.
type UserRepository interface {
	List(ctx context.Context, page, limit int) (*Page[User], error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, in UserCreateData) (*User, error)
	Update(ctx context.Context, id string, in UserUpdateData) (*User, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
}
