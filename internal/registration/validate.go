package registration

import (
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Validator reports the set of candidate fields that fail syntactic checks.
// An empty result means the candidate is well-formed.
type Validator interface {
	Validate(c Candidate) []string
}

// CandidateValidator checks signup candidates: usernames and passwords are
// 1-100 printable ASCII characters, addresses must be well-formed email.
type CandidateValidator struct {
	ascii *regexp.Regexp
}

// NewCandidateValidator compiles the field rules. The validator carries its
// own compiled state so callers inject it instead of relying on package-level
// initialization.
func NewCandidateValidator() *CandidateValidator {
	return &CandidateValidator{
		ascii: regexp.MustCompile(`^[!-~]*$`),
	}
}

// Validate returns the sorted names of all violating fields.
func (v *CandidateValidator) Validate(c Candidate) []string {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, validation.RuneLength(1, 100), validation.Match(v.ascii)),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required, validation.RuneLength(1, 100), validation.Match(v.ascii)),
	)
	if err == nil {
		return nil
	}

	violations, ok := err.(validation.Errors)
	if !ok {
		// Internal validation failure; treat every field as suspect.
		return []string{"email", "password", "username"}
	}

	fields := make([]string, 0, len(violations))
	for field := range violations {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
