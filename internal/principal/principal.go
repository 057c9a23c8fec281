// Package principal carries the caller identity handed to us by the upstream
// auth gateway. Role names are normalized here and nowhere else.
package principal

import "strings"

type Role uint8

const (
	RoleCustomer Role = 1 << iota
	RoleAdmin
	RoleCounter
	RoleWasher
	RoleLandOwner
)

var roleNames = map[string]Role{
	"CUSTOMER":   RoleCustomer,
	"USER":       RoleCustomer,
	"ADMIN":      RoleAdmin,
	"COUNTER":    RoleCounter,
	"CASHIER":    RoleCounter,
	"WASHER":     RoleWasher,
	"CAR_WASHER": RoleWasher,
	"LAND_OWNER": RoleLandOwner,
	"LANDOWNER":  RoleLandOwner,
}

// ParseRoles accepts role names in any case, separated by commas or
// whitespace. Names it does not know are dropped.
func ParseRoles(raw ...string) Role {
	var r Role
	for _, chunk := range raw {
		fields := strings.FieldsFunc(chunk, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t'
		})
		for _, f := range fields {
			name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(f), "-", "_"))
			r |= roleNames[name]
		}
	}
	return r
}

func (r Role) Has(other Role) bool {
	return r&other != 0
}

func (r Role) String() string {
	var names []string
	for _, pair := range []struct {
		role Role
		name string
	}{
		{RoleCustomer, "CUSTOMER"},
		{RoleAdmin, "ADMIN"},
		{RoleCounter, "COUNTER"},
		{RoleWasher, "WASHER"},
		{RoleLandOwner, "LAND_OWNER"},
	} {
		if r&pair.role != 0 {
			names = append(names, pair.name)
		}
	}
	return strings.Join(names, ",")
}

type Principal struct {
	UserID string
	Roles  Role
}

func New(userID string, roles ...string) Principal {
	return Principal{UserID: userID, Roles: ParseRoles(roles...)}
}

// Can reports whether the principal holds any of the given roles.
func (p Principal) Can(roles Role) bool {
	return p.Roles.Has(roles)
}

func (p Principal) IsStaff() bool {
	return p.Roles.Has(RoleAdmin | RoleCounter)
}

// System is the principal used for internal actions such as catalog sync.
var System = Principal{UserID: "system", Roles: RoleAdmin}
