package params

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ValidationError is returned before any network call when the supplied
// arguments do not satisfy the Spec.
type ValidationError struct {
	errs *multierror.Error
}

func (e *ValidationError) Error() string {
	return e.errs.Error()
}

func (e *ValidationError) Unwrap() []error {
	return e.errs.WrappedErrors()
}

// Invalid marks err as a problem with the supplied arguments that could only
// be detected against the observed state.
func Invalid(err error) error {
	errs := multierror.Append(nil, err)
	errs.ErrorFormat = joinErrors
	return &ValidationError{errs: errs}
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
