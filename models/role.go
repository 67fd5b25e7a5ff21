package models

// Role names a permission level carried in JWT claims.
type Role string

const (
	// RoleAdmin may perform any operation, including drain/undrain
	RoleAdmin Role = "admin"

	// RoleUser may reserve sessions and read grid state
	RoleUser Role = "user"

	// RoleViewer may only read grid state
	RoleViewer Role = "viewer"

	// RoleAgent identifies scheduler-to-worker calls
	RoleAgent Role = "agent"
)
