package domain

import "time"

// Role determines what a user may see and mutate.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// DefaultDepartment is the sentinel department that bypasses
// department-bound checks.
const DefaultDepartment = "general"

type User struct {
	ID           string  `json:"id"`
	ProviderUID  *string `json:"-"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone,omitempty"`
	Address      string  `json:"address,omitempty"`
	Role         Role    `json:"role"`
	Department   string  `json:"department"`
	PasswordHash *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsStaff() bool { return u.Role == RoleStaff }
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserRef is the owner projection joined into listings.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
