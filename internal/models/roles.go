package models

import (
	"fmt"
	"sort"
)

// Role is one of the closed set of grantable roles. An account with no
// grants has the implicit baseline "user" capability set, which is not a
// Role value.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
	RoleCompany  Role = "company"
)

// rolePriority orders roles for HighestRole; higher wins.
var rolePriority = map[Role]int{
	RoleAdmin:    3,
	RoleReviewer: 2,
	RoleCompany:  1,
}

// ParseRole validates a role string against the closed enumeration
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleReviewer, RoleCompany:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is a member of the closed enumeration
func (r Role) Valid() bool {
	_, ok := rolePriority[r]
	return ok
}

// ConflictsWith reports whether holding r and other together violates the
// mutual-exclusion rule. Only reviewer and company are mutually exclusive.
func (r Role) ConflictsWith(other Role) bool {
	return (r == RoleReviewer && other == RoleCompany) ||
		(r == RoleCompany && other == RoleReviewer)
}

// RoleSet is a deduplicated set of roles
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles, dropping duplicates
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains r
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects reports whether the set contains any of the given roles
func (s RoleSet) Intersects(roles []Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the set's members ordered by descending priority, so the
// result is deterministic regardless of insertion order.
func (s RoleSet) Slice() []Role {
	roles := make([]Role, 0, len(s))
	for r := range s {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool {
		return rolePriority[roles[i]] > rolePriority[roles[j]]
	})
	return roles
}

// HighestRole returns the highest-priority role in the set
// (admin > reviewer > company). ok is false for the empty set.
func (s RoleSet) HighestRole() (Role, bool) {
	best := Role("")
	for r := range s {
		if best == "" || rolePriority[r] > rolePriority[best] {
			best = r
		}
	}
	return best, best != ""
}
