// Package ipam holds the phpipam modules.
package ipam

import (
	"github.com/larivierec/infra-modules/pkg/ipam/phpipam"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

const collection = "phpipam."

// connectionOptions are shared by every module. Only some of them accept
// skip_tls_verify as an alias.
func connectionOptions(skipTLSAlias bool) params.Spec {
	skipTLS := params.Option{
		Name: "phpipam_skip_tls_verify", Type: params.Bool, Default: false,
		Description: "TLS verification toggle",
	}
	if skipTLSAlias {
		skipTLS.Aliases = []string{"skip_tls_verify"}
	}
	return params.Spec{
		{Name: "phpipam_url", Required: true, Description: "Base URL of the phpIPAM instance"},
		{Name: "phpipam_app_id", Required: true, Description: "API application id"},
		{Name: "phpipam_app_code", Required: true, NoLog: true, Description: "API application code"},
		skipTLS,
	}
}

func withConnection(skipTLSAlias bool, options ...params.Option) params.Spec {
	return append(connectionOptions(skipTLSAlias), options...)
}

type ConnectionConfig struct {
	URL           string `param:"phpipam_url"`
	AppID         string `param:"phpipam_app_id"`
	AppCode       string `param:"phpipam_app_code"`
	SkipTLSVerify bool   `param:"phpipam_skip_tls_verify"`
}

func (c ConnectionConfig) client(polarity transport.Polarity, logger logging.Logger) *phpipam.Client {
	return phpipam.NewClient(phpipam.Configuration{
		URL:           c.URL,
		AppID:         c.AppID,
		AppCode:       c.AppCode,
		SkipTLSVerify: c.SkipTLSVerify,
		Polarity:      polarity,
		Logger:        logger,
	})
}
