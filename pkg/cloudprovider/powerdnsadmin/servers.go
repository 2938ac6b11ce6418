package powerdnsadmin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
)

func (p *Provider) ListServers(ctx context.Context) ([]cloudprovider.Server, error) {
	resp, err := p.client.Expect(ctx, http.MethodGet, "/api/v1/servers", nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	var servers []cloudprovider.Server
	if err := resp.Decode(&servers); err != nil {
		return nil, err
	}
	return servers, nil
}
