package module

import (
	"sort"
	"strings"
)

var registry = map[string]Module{}

// Register adds m to the registry. Module packages call it from init.
func Register(m Module) { registry[m.Name()] = m }

// Get returns the module registered under name, or nil.
func Get(name string) Module { return registry[name] }

// Lookup resolves the name a module binary was invoked under. It accepts the
// dotted name ("powerdns_admin.zone"), its multi-call form
// ("powerdns_admin_zone"), the fully qualified collection name
// ("kenmoini.powerdns_admin.zone") and a bare module name ("zone") when
// exactly one collection provides it.
func Lookup(name string) Module {
	name = strings.TrimSuffix(name, ".exe")
	if m := Get(name); m != nil {
		return m
	}
	for _, m := range registry {
		if MultiCallName(m.Name()) == name {
			return m
		}
	}
	if parts := strings.Split(name, "."); len(parts) == 3 {
		return Get(parts[1] + "." + parts[2])
	}
	if strings.Contains(name, ".") {
		return nil
	}
	var found Module
	for n, m := range registry {
		if strings.HasSuffix(n, "."+name) {
			if found != nil {
				return nil
			}
			found = m
		}
	}
	return found
}

// MultiCallName is the file name a module binary is installed under.
func MultiCallName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func List() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
