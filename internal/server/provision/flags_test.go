package provision

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	got, err := ParseArgs([]string{
		"-d", "postgres://x", "-email", "a@corp.example", "-name", "Alice Doe",
		"-role=1", "-employee", "E1", "-secure",
	})
	require.NoError(t, err)

	want := NewUser{Email: "a@corp.example", FullName: "Alice Doe", RoleID: 1, EmployeeNo: "E1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseArgs_DefaultRole(t *testing.T) {
	got, err := ParseArgs([]string{"-email", "b@corp.example"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.RoleID)
}

func TestParseArgs_Errors(t *testing.T) {
	_, err := ParseArgs([]string{"-name", "Nobody"})
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = ParseArgs([]string{"-email", "a@corp.example", "-role", "admin"})
	assert.Error(t, err)
}
