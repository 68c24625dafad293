package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleCustomer is the default shopper role (i.e. view, place own orders)
	RoleCustomer UserRole = "customer"
	// RoleManager is a catalog manager (i.e. view, edit, create products)
	RoleManager UserRole = "manager"
	// RoleAdmin is an administrator (i.e. view, edit, create, delete)
	RoleAdmin UserRole = "admin"
)

// RoleValidator defines the interface for role-based access control validation
type RoleValidator interface {
	CanRead(resource string) bool
	CanEdit(resource string) bool
	CanCreate(resource string) bool
	CanDelete(resource string) bool
	HasRole(role string) bool
	IsAtLeast(minRole UserRole) bool
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanRead checks if this role can read resources
func (r UserRole) CanRead() bool {
	return r.IsValid()
}

// CanEdit checks if this role can edit resources
func (r UserRole) CanEdit() bool {
	switch r {
	case RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanCreate checks if this role can create resources
func (r UserRole) CanCreate() bool {
	switch r {
	case RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanDelete checks if this role can delete resources
func (r UserRole) CanDelete() bool {
	return r == RoleAdmin
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

var roleHierarchy = map[UserRole]int{
	RoleCustomer: 0,
	RoleManager:  1,
	RoleAdmin:    2,
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleCustomer,
		RoleManager,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// Authorities expands a role into the full set of granted authorities,
// every role at or below the given one in the hierarchy.
func Authorities(r UserRole) []string {
	level, ok := roleHierarchy[r]
	if !ok {
		return nil
	}

	granted := make([]string, 0, level+1)
	for _, role := range GetAllRoles() {
		if roleHierarchy[role] <= level {
			granted = append(granted, string(role))
		}
	}
	return granted
}
