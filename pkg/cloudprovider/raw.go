package cloudprovider

import "encoding/json"

func (a *Account) UnmarshalJSON(data []byte) error {
	type account Account
	var v account
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Account(v)
	a.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (a Account) MarshalJSON() ([]byte, error) {
	type account Account
	return overlayRaw(a.Raw, account(a))
}

func (z *Zone) UnmarshalJSON(data []byte) error {
	type zone Zone
	var v zone
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*z = Zone(v)
	z.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (z Zone) MarshalJSON() ([]byte, error) {
	type zone Zone
	return overlayRaw(z.Raw, zone(z))
}

// overlayRaw encodes v and lays its fields over raw, so attributes the API
// returned that the Go type does not model are kept in module results.
func overlayRaw(raw json.RawMessage, v any) ([]byte, error) {
	typed, err := json.Marshal(v)
	if err != nil || len(raw) == 0 {
		return typed, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return typed, nil
	}
	overlay := map[string]json.RawMessage{}
	if err := json.Unmarshal(typed, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		fields[k] = v
	}
	return json.Marshal(fields)
}
