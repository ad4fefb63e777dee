package models

import "time"

// UserRole represents the available roles for the RBAC system.
// Every account holds exactly one role.
type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleAdvisor    UserRole = "ADVISOR"
	RoleHead       UserRole = "HEAD"
	RoleAdmin      UserRole = "ADMIN"
)

// KnownRole reports whether the value is one of the five supported roles.
func KnownRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdvisor, RoleHead, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	ExternalID   *string    `db:"external_id" json:"external_id,omitempty"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	StudentNo    *string    `db:"student_no" json:"student_no,omitempty"`
	Faculty      *string    `db:"faculty" json:"faculty,omitempty"`
	Branch       *string    `db:"branch" json:"branch,omitempty"`
	ContactNo    *string    `db:"contact_number" json:"contact_number,omitempty"`
	StudentGroup *string    `db:"student_group" json:"student_group,omitempty"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CreateUserRequest provisions a new account.
type CreateUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=6"`
	FullName     string   `json:"full_name" validate:"required"`
	Role         UserRole `json:"role" validate:"required"`
	StudentNo    *string  `json:"student_no,omitempty"`
	Faculty      *string  `json:"faculty,omitempty"`
	Branch       *string  `json:"branch,omitempty"`
	ContactNo    *string  `json:"contact_number,omitempty"`
	StudentGroup *string  `json:"student_group,omitempty"`
}

// UpdateUserRequest edits profile fields. Nil pointers leave the
// current value untouched.
type UpdateUserRequest struct {
	FullName     *string `json:"full_name,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	StudentNo    *string `json:"student_no,omitempty"`
	Faculty      *string `json:"faculty,omitempty"`
	Branch       *string `json:"branch,omitempty"`
	ContactNo    *string `json:"contact_number,omitempty"`
	StudentGroup *string `json:"student_group,omitempty"`
}

// ChangeRoleRequest reassigns an account's role.
type ChangeRoleRequest struct {
	Role UserRole `json:"role" validate:"required"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
