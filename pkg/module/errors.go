package module

import (
	"errors"

	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

const (
	// ErrorAPI indicates the remote system rejected a call.
	ErrorAPI = "API Error"
	// ErrorUser indicates invalid module arguments.
	ErrorUser = "User Error"
	// ErrorProvider indicates a local failure talking to the remote system.
	ErrorProvider = "Provider Error"
)

// Category classifies err for log lines.
func Category(err error) string {
	var verr *params.ValidationError
	if errors.As(err, &verr) {
		return ErrorUser
	}
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		return ErrorAPI
	}
	return ErrorProvider
}
