package models

// UserRole is the portal role carried in the auth token.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleAdmin   UserRole = "admin"
)

// AuthUser is the authenticated principal extracted from the identity
// provider's token. It is request-scoped and never persisted; for students
// the Roll ties the principal to enrollment rows.
type AuthUser struct {
	ID       string   `json:"id"`
	Roll     string   `json:"roll"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}
