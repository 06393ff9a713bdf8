package services

import "github.com/dmitrijs2005/staffgate/internal/server/models"

// BuildClaims assembles the session claims. The local user and role are
// authoritative for identity fields. EmployeeNo comes from the user record
// only, Department only from a resolved directory record; either is left nil
// when its source has nothing.
func BuildClaims(user *models.User, role *models.Role, lookup models.EmployeeLookup) models.SessionClaims {
	c := models.SessionClaims{
		Name:     user.UserName,
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		RoleID:   user.RoleID,
	}
	if role != nil {
		c.Role = role.Name
	}

	if user.HasEmployeeNo() {
		no := *user.EmployeeNo
		c.EmployeeNo = &no
	}

	if rec, ok := lookup.Get(); ok && rec.DepartmentCode != "" {
		dep := rec.DepartmentCode
		c.Department = &dep
	}

	return c
}
