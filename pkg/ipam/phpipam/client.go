package phpipam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/transport"
)

const system = "phpipam"

// Client calls the phpIPAM REST API under {url}/api/{app_id}, authenticating
// with the app code in the "token" header.
type Client struct {
	client *transport.Client
	logger logging.Logger
}

type Configuration struct {
	URL     string
	AppID   string
	AppCode string

	SkipTLSVerify bool
	Polarity      transport.Polarity
	Logger        logging.Logger
}

func NewClient(config Configuration) *Client {
	logger := logging.OrDiscard(config.Logger)
	return &Client{
		client: transport.New(transport.Config{
			BaseURL:       config.URL + "/api/" + url.PathEscape(config.AppID),
			System:        system,
			Auth:          transport.HeaderAuth{Header: "token", Value: config.AppCode},
			SkipTLSVerify: config.SkipTLSVerify,
			Polarity:      config.Polarity,
			Logger:        logger,
		}),
		logger: logger,
	}
}

// ReserveAddress creates an address and returns the response document as is,
// whatever its status.
func (c *Client) ReserveAddress(ctx context.Context, req AddressRequest) (map[string]any, error) {
	resp, err := c.client.Do(ctx, http.MethodPost, "/addresses/", req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("reserve address answered", "ip", req.IP, "status", resp.StatusCode)
	return rawDocument(resp)
}

// ReleaseAddress deletes address ipID from subnetID and returns the response
// document as is, whatever its status.
func (c *Client) ReleaseAddress(ctx context.Context, ipID, subnetID int) (map[string]any, error) {
	path := "/addresses/" + strconv.Itoa(ipID) + "/" + strconv.Itoa(subnetID) + "/"
	resp, err := c.client.Do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("release address answered", "ip_id", ipID, "status", resp.StatusCode)
	return rawDocument(resp)
}

// SearchAddress returns the data field of /addresses/search/{ip}.
func (c *Client) SearchAddress(ctx context.Context, ip string) (any, error) {
	return c.data(ctx, "/addresses/search/"+url.PathEscape(ip))
}

// FirstFreeAddress returns the data field of /addresses/first_free/{subnet}.
func (c *Client) FirstFreeAddress(ctx context.Context, subnetID string) (any, error) {
	return c.data(ctx, "/addresses/first_free/"+url.PathEscape(subnetID))
}

// SubnetByCIDR returns the data field of /subnets/cidr/{cidr}. The slash of
// the CIDR is part of the route and is not escaped.
func (c *Client) SubnetByCIDR(ctx context.Context, cidr string) (any, error) {
	return c.data(ctx, "/subnets/cidr/"+cidr)
}

// data fetches path and returns the envelope's data field. phpIPAM answers
// "no results" with a missing data field, sometimes under a 404; both decode
// to nil.
func (c *Client) data(ctx context.Context, path string) (any, error) {
	resp, err := c.client.Expect(ctx, http.MethodGet, path, nil, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", path, err)
	}
	var envelope Envelope
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		c.logger.Debug("no data in response", "path", path, "code", envelope.Code, "message", envelope.Message)
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("error decoding data field: %w", err)
	}
	return data, nil
}

func rawDocument(resp *transport.Response) (map[string]any, error) {
	var doc map[string]any
	if err := resp.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
