// Package dns holds the powerdns_admin modules.
package dns

import (
	"github.com/larivierec/infra-modules/pkg/cloudprovider/powerdnsadmin"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

const collection = "powerdns_admin."

var (
	urlOption = params.Option{
		Name: "pdns_admin_url", Aliases: []string{"url"}, Required: true,
		Description: "Base URL of the PowerDNS Admin instance",
	}
	skipTLSOption = params.Option{
		Name: "pdns_admin_skip_tls_verify", Aliases: []string{"skip_tls_verify"}, Type: params.Bool, Default: false,
		Description: "TLS verification toggle",
	}
	usernameOption = params.Option{
		Name: "pdns_admin_username", Aliases: []string{"username"}, Required: true,
		Description: "PowerDNS Admin user for basic auth",
	}
	passwordOption = params.Option{
		Name: "pdns_admin_password", Aliases: []string{"password"}, Required: true, NoLog: true,
		Description: "PowerDNS Admin password for basic auth",
	}
	apiKeyOption = params.Option{
		Name: "pdns_admin_api_key", Aliases: []string{"api_key"}, Required: true, NoLog: true,
		Description: "PowerDNS Admin API key",
	}
)

// BasicAuthConfig holds the connection parameters of the account modules.
type BasicAuthConfig struct {
	URL           string `param:"pdns_admin_url"`
	SkipTLSVerify bool   `param:"pdns_admin_skip_tls_verify"`
	Username      string `param:"pdns_admin_username"`
	Password      string `param:"pdns_admin_password"`
}

func (c BasicAuthConfig) provider(polarity transport.Polarity, logger logging.Logger) *powerdnsadmin.Provider {
	return powerdnsadmin.NewProvider(powerdnsadmin.Configuration{
		URL:           c.URL,
		Username:      c.Username,
		Password:      c.Password,
		SkipTLSVerify: c.SkipTLSVerify,
		Polarity:      polarity,
		Logger:        logger,
	})
}

// APIKeyConfig holds the connection parameters of the server, zone and record
// modules.
type APIKeyConfig struct {
	URL           string `param:"pdns_admin_url"`
	SkipTLSVerify bool   `param:"pdns_admin_skip_tls_verify"`
	APIKey        string `param:"pdns_admin_api_key"`
}

func (c APIKeyConfig) provider(polarity transport.Polarity, logger logging.Logger) *powerdnsadmin.Provider {
	return powerdnsadmin.NewProvider(powerdnsadmin.Configuration{
		URL:           c.URL,
		APIKey:        c.APIKey,
		SkipTLSVerify: c.SkipTLSVerify,
		Polarity:      polarity,
		Logger:        logger,
	})
}

func stateOption(choices ...string) params.Option {
	return params.Option{Name: "state", Default: "present", Choices: choices, Description: "Desired state"}
}
