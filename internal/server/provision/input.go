package provision

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var ErrPasswordMismatch = errors.New("passwords do not match")

// PromptPassword reads the password twice from the terminal fd without echo
// and returns it when both entries match. The caller owns the returned slice.
func PromptPassword(fd int, w io.Writer) ([]byte, error) {
	first, err := promptOnce(fd, w, "Enter password: ")
	if err != nil {
		return nil, err
	}
	second, err := promptOnce(fd, w, "Repeat password: ")
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, ErrPasswordMismatch
	}
	return first, nil
}

func promptOnce(fd int, w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
