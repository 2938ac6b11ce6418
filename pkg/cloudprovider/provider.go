package cloudprovider

import (
	"context"
	"encoding/json"
)

// Account is a PowerDNS Admin account.
type Account struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	Mail        string `json:"mail"`

	// Raw is the object as the API returned it.
	Raw json.RawMessage `json:"-"`
}

// AccountPayload is the create/update body. Empty optional fields are
// omitted so an update never clears what the caller did not supply.
type AccountPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Mail        string `json:"mail,omitempty"`
}

// Zone as returned by the PowerDNS API behind PowerDNS Admin.
type Zone struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type,omitempty"`
	URL            string   `json:"url,omitempty"`
	Kind           string   `json:"kind"`
	Serial         int64    `json:"serial,omitempty"`
	NotifiedSerial int64    `json:"notified_serial,omitempty"`
	EditedSerial   int64    `json:"edited_serial,omitempty"`
	Masters        []string `json:"masters,omitempty"`
	DNSSec         bool     `json:"dnssec"`
	SOAEdit        string   `json:"soa_edit,omitempty"`
	SOAEditAPI     string   `json:"soa_edit_api"`
	Account        string   `json:"account"`
	RRSets         []RRSet  `json:"rrsets,omitempty"`

	// Raw is the object as the API returned it.
	Raw json.RawMessage `json:"-"`
}

// ZoneCreate is the POST body for a new zone.
type ZoneCreate struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Kind       string `json:"kind"`
	SOAEditAPI string `json:"soa_edit_api,omitempty"`
	Account    string `json:"account,omitempty"`
}

// ZoneUpdate is the PUT body; only changed attributes are set.
type ZoneUpdate struct {
	Kind       string `json:"kind,omitempty"`
	SOAEditAPI string `json:"soa_edit_api,omitempty"`
	Account    string `json:"account,omitempty"`
}

// RRSet is every record sharing one name and type.
type RRSet struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	TTL        int       `json:"ttl"`
	ChangeType string    `json:"changetype,omitempty"`
	Records    []Record  `json:"records"`
	Comments   []Comment `json:"comments,omitempty"`
}

type Record struct {
	Content  string `json:"content"`
	Disabled bool   `json:"disabled"`
}

type Comment struct {
	Content    string `json:"content"`
	Account    string `json:"account"`
	ModifiedAt int64  `json:"modified_at,omitempty"`
}

const (
	ChangeTypeReplace = "REPLACE"
	ChangeTypeDelete  = "DELETE"
)

// Server is a PowerDNS daemon as listed by the API.
type Server struct {
	ID         string `json:"id"`
	Type       string `json:"type,omitempty"`
	DaemonType string `json:"daemon_type,omitempty"`
	Version    string `json:"version,omitempty"`
	URL        string `json:"url,omitempty"`
	ConfigURL  string `json:"config_url,omitempty"`
	ZonesURL   string `json:"zones_url,omitempty"`
}

// AccountProvider manages PowerDNS Admin accounts, which are addressed by id.
type AccountProvider interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	CreateAccount(ctx context.Context, payload AccountPayload) (*Account, error)
	UpdateAccount(ctx context.Context, id int, payload AccountPayload) error
	DeleteAccount(ctx context.Context, id int) error
}

// ZoneProvider manages zones. GetZone returns nil, nil when the zone is missing.
type ZoneProvider interface {
	ListZones(ctx context.Context, server string) ([]Zone, error)
	GetZone(ctx context.Context, server, zone string) (*Zone, error)
	CreateZone(ctx context.Context, server string, payload ZoneCreate) (*Zone, error)
	UpdateZone(ctx context.Context, server, zone string, payload ZoneUpdate) error
	DeleteZone(ctx context.Context, server, zone string) error
}

// RecordProvider reads rrsets through their zone and writes them with PATCH.
type RecordProvider interface {
	GetZone(ctx context.Context, server, zone string) (*Zone, error)
	PatchRRSets(ctx context.Context, server, zone string, rrsets []RRSet) error
}

// ServerProvider lists the PowerDNS servers behind PowerDNS Admin.
type ServerProvider interface {
	ListServers(ctx context.Context) ([]Server, error)
}
