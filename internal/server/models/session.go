package models

import (
	"strconv"
	"time"
)

// Session backs a signed session token; its ID is the token's jti. A token
// is only honoured while the row exists and has not expired.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionClaims is the fixed claim set carried by a session. EmployeeNo and
// Department are nil when their source did not supply them.
type SessionClaims struct {
	Name       string  `json:"name"`
	UserID     int64   `json:"uid"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	RoleID     int64   `json:"role_id"`
	Role       string  `json:"role"`
	EmployeeNo *string `json:"employee_no,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Claim is a single type/value pair as exposed to HTTP clients.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Claim type names.
const (
	ClaimName       = "name"
	ClaimUserID     = "user_id"
	ClaimFullName   = "full_name"
	ClaimEmail      = "email"
	ClaimRoleID     = "role_id"
	ClaimRole       = "role"
	ClaimEmployeeNo = "employee_no"
	ClaimDepartment = "department"
)

// List flattens the claims, omitting absent optional ones.
func (c SessionClaims) List() []Claim {
	out := []Claim{
		{Type: ClaimName, Value: c.Name},
		{Type: ClaimUserID, Value: strconv.FormatInt(c.UserID, 10)},
		{Type: ClaimFullName, Value: c.FullName},
		{Type: ClaimEmail, Value: c.Email},
		{Type: ClaimRoleID, Value: strconv.FormatInt(c.RoleID, 10)},
		{Type: ClaimRole, Value: c.Role},
	}
	if c.EmployeeNo != nil {
		out = append(out, Claim{Type: ClaimEmployeeNo, Value: *c.EmployeeNo})
	}
	if c.Department != nil {
		out = append(out, Claim{Type: ClaimDepartment, Value: *c.Department})
	}
	return out
}
