package powerdnsadmin

import (
	"github.com/larivierec/infra-modules/pkg/cloudprovider"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/transport"
)

const system = "powerdns_admin"

// Provider talks to a PowerDNS Admin instance. The pdnsadmin account endpoints
// want basic auth; the proxied PowerDNS server endpoints want an API key.
// Which one a Provider uses is decided by its Configuration.
type Provider struct {
	client *transport.Client
	logger logging.Logger
}

type Configuration struct {
	URL      string
	Username string
	Password string
	APIKey   string

	SkipTLSVerify bool
	Polarity      transport.Polarity
	Logger        logging.Logger
}

var (
	_ cloudprovider.AccountProvider = (*Provider)(nil)
	_ cloudprovider.ZoneProvider    = (*Provider)(nil)
	_ cloudprovider.RecordProvider  = (*Provider)(nil)
	_ cloudprovider.ServerProvider  = (*Provider)(nil)
)

func NewProvider(config Configuration) *Provider {
	var auth transport.Auth
	if config.APIKey != "" {
		auth = transport.HeaderAuth{Header: "X-API-Key", Value: config.APIKey}
	} else {
		auth = transport.BasicAuth{Username: config.Username, Password: config.Password}
	}
	logger := logging.OrDiscard(config.Logger)
	return &Provider{
		client: transport.New(transport.Config{
			BaseURL:       config.URL,
			System:        system,
			Auth:          auth,
			SkipTLSVerify: config.SkipTLSVerify,
			Polarity:      config.Polarity,
			Logger:        logger,
		}),
		logger: logger,
	}
}
