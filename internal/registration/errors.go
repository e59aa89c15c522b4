package registration

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a lookup miss: unknown username, or a confirmation
	// token that never existed or was already consumed.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned by repositories when an insert loses to
	// the storage-level uniqueness constraint on the username.
	ErrDuplicateName = errors.New("username already taken")

	// ErrDelivery marks a failed confirmation mail dispatch.
	ErrDelivery = errors.New("confirmation mail could not be delivered")
)

// ValidationError lists every candidate field that failed syntactic checks.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on fields: [%s]", strings.Join(e.Fields, ", "))
}
