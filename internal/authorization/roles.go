// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"fmt"
)

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleAlmoxarife Role = "almoxarife"
	RoleAuditor    Role = "auditor"
	RoleOperator   Role = "operator"
)

// roleLevels is the hierarchy, highest first.
var roleLevels = map[Role]int{
	RoleSuperadmin: 5,
	RoleAdmin:      4,
	RoleAlmoxarife: 3,
	RoleAuditor:    2,
	RoleOperator:   1,
}

// Roles lists every known role, highest first.
func Roles() []Role {
	return []Role{RoleSuperadmin, RoleAdmin, RoleAlmoxarife, RoleAuditor, RoleOperator}
}

// Level returns the rank of the role, 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// AtLeast reports whether r ranks at or above required.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && r.Level() >= required.Level()
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// MaxRole returns the highest ranked role among the given role names.
// Unknown names are ignored, ok is false when none is known.
func MaxRole(roles []string) (Role, bool) {
	var (
		top   Role
		level int
	)

	for _, s := range roles {
		r := Role(s)
		if l := r.Level(); l > level {
			top, level = r, l
		}
	}

	return top, level > 0
}

// RolesAtLeast returns the role names ranking at or above required.
func RolesAtLeast(required Role) []string {
	var ret []string
	for _, r := range Roles() {
		if r.AtLeast(required) {
			ret = append(ret, string(r))
		}
	}
	return ret
}
