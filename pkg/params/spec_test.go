package params_test

import (
	"errors"
	"testing"

	"github.com/larivierec/infra-modules/pkg/params"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

var zoneSpec = params.Spec{
	{Name: "pdns_admin_url", Aliases: []string{"url"}, Required: true},
	{Name: "pdns_admin_api_key", Aliases: []string{"api_key"}, Required: true, NoLog: true},
	{Name: "pdns_admin_skip_tls_verify", Aliases: []string{"skip_tls_verify"}, Type: params.Bool, Default: false},
	{Name: "zone_name", Aliases: []string{"name", "zone"}, Required: true},
	{Name: "zone_type", Choices: []string{"Native", "Master", "Slave"}, Default: "Native"},
	{Name: "record_ttl", Aliases: []string{"ttl"}, Type: params.Int, Default: 3600},
	{Name: "account"},
}

type zoneConfig struct {
	URL           string `param:"pdns_admin_url"`
	APIKey        string `param:"pdns_admin_api_key"`
	SkipTLSVerify bool   `param:"pdns_admin_skip_tls_verify"`
	Name          string `param:"zone_name"`
	Type          string `param:"zone_type"`
	TTL           int    `param:"record_ttl"`
	Account       string `param:"account"`
}

func TestParse_AliasesDefaultsAndCoercion(t *testing.T) {
	values, err := zoneSpec.Parse(map[string]any{
		"url":                "https://pdns.example.com",
		"api_key":            1234567890,
		"zone":               "example.com.",
		"skip_tls_verify":    "yes",
		"ttl":                "300",
		"_ansible_verbosity": 3,
	})
	assert.NilError(t, err)

	assert.DeepEqual(t, values, map[string]any{
		"pdns_admin_url":             "https://pdns.example.com",
		"pdns_admin_api_key":         "1234567890",
		"zone_name":                  "example.com.",
		"pdns_admin_skip_tls_verify": true,
		"zone_type":                  "Native",
		"record_ttl":                 300,
	})
}

func TestParse_CanonicalNameWinsOverAlias(t *testing.T) {
	values, err := zoneSpec.Parse(map[string]any{
		"url":       "https://pdns.example.com",
		"api_key":   "key",
		"name":      "alias.example.com.",
		"zone_name": "canonical.example.com.",
	})
	assert.NilError(t, err)
	assert.Equal(t, values["zone_name"], "canonical.example.com.")
}

func TestParse_NamesFallBackToCaseInsensitive(t *testing.T) {
	values, err := zoneSpec.Parse(map[string]any{
		"PDNS_Admin_URL": "https://pdns.example.com",
		"Api_Key":        "key",
		"Zone":           "example.com.",
	})
	assert.NilError(t, err)
	assert.Equal(t, values["pdns_admin_url"], "https://pdns.example.com")
	assert.Equal(t, values["pdns_admin_api_key"], "key")
	assert.Equal(t, values["zone_name"], "example.com.")
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	_, err := zoneSpec.Parse(map[string]any{
		"zone_type": "Primary",
		"bogus":     true,
		"ttl":       "forever",
	})

	var verr *params.ValidationError
	assert.Assert(t, errors.As(err, &verr))
	assert.Assert(t, is.Contains(err.Error(), "unsupported parameters: bogus"))
	assert.Assert(t, is.Contains(err.Error(), "missing required arguments: pdns_admin_url, pdns_admin_api_key, zone_name"))
	assert.Assert(t, is.Contains(err.Error(), "value of zone_type must be one of: Native, Master, Slave, got: Primary"))
	assert.Assert(t, is.Contains(err.Error(), "argument record_ttl"))
}

func TestParse_NilTreatedAsUnset(t *testing.T) {
	values, err := zoneSpec.Parse(map[string]any{
		"url":     "https://pdns.example.com",
		"api_key": "key",
		"zone":    "example.com.",
		"account": nil,
	})
	assert.NilError(t, err)
	_, ok := values["account"]
	assert.Assert(t, !ok)
}

func TestDecode(t *testing.T) {
	var cfg zoneConfig
	err := zoneSpec.Decode(map[string]any{
		"url":       "https://pdns.example.com",
		"api_key":   "key",
		"zone":      "example.com.",
		"zone_type": "Master",
		"account":   "acme",
	}, &cfg)
	assert.NilError(t, err)

	assert.DeepEqual(t, cfg, zoneConfig{
		URL:     "https://pdns.example.com",
		APIKey:  "key",
		Name:    "example.com.",
		Type:    "Master",
		TTL:     3600,
		Account: "acme",
	})
}

func TestDecode_OptionalPointerStaysNil(t *testing.T) {
	spec := params.Spec{
		{Name: "is_gateway", Type: params.Bool},
		{Name: "ping_exclude", Type: params.Bool},
	}
	var cfg struct {
		IsGateway   *bool `param:"is_gateway"`
		PingExclude *bool `param:"ping_exclude"`
	}

	assert.NilError(t, spec.Decode(map[string]any{"is_gateway": "true"}, &cfg))
	assert.Assert(t, cfg.IsGateway != nil && *cfg.IsGateway)
	assert.Assert(t, cfg.PingExclude == nil)
}

func TestRedact(t *testing.T) {
	redacted := zoneSpec.Redact(map[string]any{
		"pdns_admin_api_key": "secret",
		"zone_name":          "example.com.",
	})
	assert.Equal(t, redacted["pdns_admin_api_key"], "********")
	assert.Equal(t, redacted["zone_name"], "example.com.")
}
