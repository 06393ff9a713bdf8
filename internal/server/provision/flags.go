package provision

import (
	"errors"
	"flag"
	"io"

	"github.com/dmitrijs2005/staffgate/internal/flagx"
)

// ErrMissingEmail is returned by ParseArgs when -email is not given.
var ErrMissingEmail = errors.New("-email is required")

// ParseArgs reads the account flags from argv. Server flags such as -d pass
// through untouched for config.LoadConfig.
//
//	-email string      login email (required)
//	-name string       full name
//	-username string   user name, defaults to the email
//	-role int          role id (1 admin, 2 staff)
//	-employee string   employee number in the external directory
//	-location string   office location
func ParseArgs(argv []string) (NewUser, error) {
	args := flagx.FilterArgs(argv, []string{"-email", "-name", "-username", "-role", "-employee", "-location"})

	var u NewUser
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&u.Email, "email", "", "login email")
	fs.StringVar(&u.FullName, "name", "", "full name")
	fs.StringVar(&u.UserName, "username", "", "user name")
	fs.Int64Var(&u.RoleID, "role", 2, "role id")
	fs.StringVar(&u.EmployeeNo, "employee", "", "employee number")
	fs.StringVar(&u.Location, "location", "", "office location")

	if err := fs.Parse(args); err != nil {
		return NewUser{}, err
	}
	if u.Email == "" {
		return NewUser{}, ErrMissingEmail
	}
	return u, nil
}
