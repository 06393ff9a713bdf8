// Package models holds the records persisted by the broker and the transient
// values it assembles while signing a user in.
package models

import "time"

// User is a locally registered account. EmployeeNo is a soft link into the
// external directory and carries no foreign key.
type User struct {
	ID           int64
	UserName     string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string `json:"-"`
	RoleID       int64
	EmployeeNo   *string
	Location     string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
}

// HasEmployeeNo reports whether the user is linked to a directory record.
func (u *User) HasEmployeeNo() bool {
	return u.EmployeeNo != nil && *u.EmployeeNo != ""
}

// Role is referenced from users by id only.
type Role struct {
	ID          int64
	Name        string
	Description string
}
