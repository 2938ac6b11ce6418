package phpipam

import (
	"encoding/json"
	"fmt"
)

// Tag is phpIPAM's numeric address state.
type Tag int

const (
	TagOffline  Tag = 1
	TagUsed     Tag = 2
	TagReserved Tag = 3
	TagDHCP     Tag = 4
)

var tagNames = map[string]Tag{
	"offline":  TagOffline,
	"used":     TagUsed,
	"reserved": TagReserved,
	"dhcp":     TagDHCP,
}

// TagNames lists the accepted tag names in code order.
var TagNames = []string{"offline", "used", "reserved", "dhcp"}

func ParseTag(name string) (Tag, error) {
	tag, ok := tagNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown address tag %q", name)
	}
	return tag, nil
}

// AddressRequest is the body of POST /addresses/. Optional fields are only
// sent when set.
type AddressRequest struct {
	IP          string `json:"ip"`
	SubnetID    int    `json:"subnetId"`
	Hostname    string `json:"hostname,omitempty"`
	Description string `json:"description,omitempty"`
	Tag         Tag    `json:"tag,omitempty"`
	IsGateway   bool   `json:"is_gateway,omitempty"`
	PingExclude bool   `json:"ping_exclude,omitempty"`
	PTRExclude  bool   `json:"ptr_exclude,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Envelope wraps every phpIPAM API response.
type Envelope struct {
	Code    int             `json:"code"`
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
