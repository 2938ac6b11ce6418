package transport

import "net/http"

// Auth decorates an outgoing request with credentials.
type Auth interface {
	Apply(req *http.Request)
}

// BasicAuth sends "Authorization: Basic base64(user:pass)".
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// HeaderAuth sends a static API key in a named header, e.g. X-API-Key or token.
type HeaderAuth struct {
	Header string
	Value  string
}

func (a HeaderAuth) Apply(req *http.Request) {
	req.Header.Set(a.Header, a.Value)
}
