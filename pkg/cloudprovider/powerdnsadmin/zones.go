package powerdnsadmin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
)

func zonesPath(server string) string {
	return "/api/v1/servers/" + url.PathEscape(server) + "/zones"
}

func zonePath(server, zone string) string {
	return zonesPath(server) + "/" + url.PathEscape(zone)
}

func (p *Provider) ListZones(ctx context.Context, server string) ([]cloudprovider.Zone, error) {
	resp, err := p.client.Expect(ctx, http.MethodGet, zonesPath(server), nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	var zones []cloudprovider.Zone
	if err := resp.Decode(&zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// GetZone returns nil, nil for 404, and for the 422 older PowerDNS releases
// answer with when a zone does not exist.
func (p *Provider) GetZone(ctx context.Context, server, zone string) (*cloudprovider.Zone, error) {
	resp, err := p.client.Expect(ctx, http.MethodGet, zonePath(server, zone), nil,
		http.StatusOK, http.StatusNotFound, http.StatusUnprocessableEntity)
	if err != nil {
		return nil, fmt.Errorf("failed to get zone %s: %w", zone, err)
	}
	if resp.StatusCode != http.StatusOK {
		p.logger.Debug("zone not found", "zone", zone, "status", resp.StatusCode)
		return nil, nil
	}
	var z cloudprovider.Zone
	if err := resp.Decode(&z); err != nil {
		return nil, err
	}
	return &z, nil
}

func (p *Provider) CreateZone(ctx context.Context, server string, payload cloudprovider.ZoneCreate) (*cloudprovider.Zone, error) {
	resp, err := p.client.Expect(ctx, http.MethodPost, zonesPath(server), payload, http.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to manage zone: %w", err)
	}
	var z cloudprovider.Zone
	if err := resp.Decode(&z); err != nil {
		return nil, err
	}
	p.logger.Info("zone created", "zone", z.Name, "kind", z.Kind)
	return &z, nil
}

func (p *Provider) UpdateZone(ctx context.Context, server, zone string, payload cloudprovider.ZoneUpdate) error {
	_, err := p.client.Expect(ctx, http.MethodPut, zonePath(server, zone), payload, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("failed to update zone: %w", err)
	}
	p.logger.Info("zone updated", "zone", zone)
	return nil
}

func (p *Provider) DeleteZone(ctx context.Context, server, zone string) error {
	_, err := p.client.Expect(ctx, http.MethodDelete, zonePath(server, zone), nil, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	p.logger.Info("zone deleted", "zone", zone)
	return nil
}

// PatchRRSets applies rrset changes (REPLACE or DELETE) to zone.
func (p *Provider) PatchRRSets(ctx context.Context, server, zone string, rrsets []cloudprovider.RRSet) error {
	payload := struct {
		RRSets []cloudprovider.RRSet `json:"rrsets"`
	}{RRSets: rrsets}
	_, err := p.client.Expect(ctx, http.MethodPatch, zonePath(server, zone), payload,
		http.StatusOK, http.StatusCreated, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("failed to manage record: %w", err)
	}
	return nil
}
