// Package privilege defines the privilege and role label vocabulary shared
// across the login pipeline. Labels are opaque strings compared by equality.
package privilege

// Privilege labels granted to users through their roles.
const (
	Read           = "READ_PRIVILEGE"
	Write          = "WRITE_PRIVILEGE"
	ChangePassword = "CHANGE_PASSWORD_PRIVILEGE"
	Manager        = "MANAGER_PRIVILEGE"
)

// Role names used by the bootstrap seeding and the IAM store.
const (
	RoleAdmin   = "ROLE_ADMIN"
	RoleManager = "ROLE_MANAGER"
	RoleUser    = "ROLE_USER"
)

// Set is an immutable-by-convention set of privilege labels attached to an
// identity at authentication time.
type Set map[string]struct{}

// NewSet builds a Set from the given labels.
func NewSet(labels ...string) Set {
	s := make(Set, len(labels))
	for _, label := range labels {
		s[label] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given label.
func (s Set) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Labels returns the labels in the set. Order is not defined.
func (s Set) Labels() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	return labels
}
