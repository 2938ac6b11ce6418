// Package params implements the module argument spec: canonical names,
// aliases, types, defaults, choices and required flags. Raw arguments from an
// args file are normalised against a Spec and decoded into a typed config
// struct before any remote call is made.
package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
)

type Type int

const (
	String Type = iota
	Int
	Bool
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return "str"
	}
}

// Option describes one module parameter.
type Option struct {
	Name        string
	Aliases     []string
	Type        Type
	Required    bool
	Default     any
	Choices     []string
	NoLog       bool
	Description string
}

// Spec is the full parameter surface of a module.
type Spec []Option

// internalPrefix marks keys Ansible adds to every args file.
const internalPrefix = "_ansible_"

// Parse resolves aliases, applies defaults, coerces types and checks choices.
// A key that matches no name or alias exactly is matched ignoring case.
// The returned map is keyed by canonical name and omits unset optional
// parameters. Every problem found is reported at once.
func (s Spec) Parse(raw map[string]any) (map[string]any, error) {
	var errs *multierror.Error

	index := make(map[string]*Option, len(s))
	folded := make(map[string]*Option, len(s))
	for i := range s {
		opt := &s[i]
		for _, name := range append([]string{opt.Name}, opt.Aliases...) {
			index[name] = opt
			if _, taken := folded[strings.ToLower(name)]; !taken {
				folded[strings.ToLower(name)] = opt
			}
		}
	}

	supplied := make(map[string]any, len(raw))
	var unsupported []string
	for _, key := range sortedKeys(raw) {
		if strings.HasPrefix(key, internalPrefix) {
			continue
		}
		opt, ok := index[key]
		if !ok {
			// PowerShell callers are used to case-insensitive parameter names
			opt, ok = folded[strings.ToLower(key)]
		}
		if !ok {
			unsupported = append(unsupported, key)
			continue
		}
		value := raw[key]
		if value == nil {
			continue
		}
		// the canonical name wins over an alias
		if _, seen := supplied[opt.Name]; seen && !strings.EqualFold(key, opt.Name) {
			continue
		}
		supplied[opt.Name] = value
	}
	if len(unsupported) > 0 {
		errs = multierror.Append(errs, fmt.Errorf("unsupported parameters: %s", strings.Join(unsupported, ", ")))
	}

	values := make(map[string]any, len(s))
	var missing []string
	for _, opt := range s {
		value, ok := supplied[opt.Name]
		if !ok {
			if opt.Required {
				missing = append(missing, opt.Name)
				continue
			}
			if opt.Default == nil {
				continue
			}
			value = opt.Default
		}

		coerced, err := coerce(opt, value)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := checkChoice(opt, coerced); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		values[opt.Name] = coerced
	}
	if len(missing) > 0 {
		errs = multierror.Append(errs, fmt.Errorf("missing required arguments: %s", strings.Join(missing, ", ")))
	}

	if errs != nil {
		errs.ErrorFormat = joinErrors
		return nil, &ValidationError{errs: errs}
	}
	return values, nil
}

// Decode parses raw and stores the result into out, a pointer to a struct
// whose fields carry `param:"<canonical name>"` tags.
func (s Spec) Decode(raw map[string]any, out any) error {
	values, err := s.Parse(raw)
	if err != nil {
		return err
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "param",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("error building decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("error decoding parameters: %w", err)
	}
	return nil
}

// Redact returns a copy of values with no_log parameters masked, for logging.
func (s Spec) Redact(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, opt := range s {
		if _, ok := out[opt.Name]; ok && opt.NoLog {
			out[opt.Name] = "********"
		}
	}
	return out
}

func checkChoice(opt Option, value any) error {
	if len(opt.Choices) == 0 {
		return nil
	}
	str, _ := value.(string)
	for _, choice := range opt.Choices {
		if str == choice {
			return nil
		}
	}
	return fmt.Errorf("value of %s must be one of: %s, got: %v", opt.Name, strings.Join(opt.Choices, ", "), value)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
