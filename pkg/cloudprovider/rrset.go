package cloudprovider

import "strings"

// SameName compares record names ignoring a trailing dot.
func SameName(a, b string) bool {
	return strings.TrimSuffix(a, ".") == strings.TrimSuffix(b, ".")
}

// FindRRSet returns the rrset of zone matching name and type, or nil.
func FindRRSet(zone *Zone, name, rrType string) *RRSet {
	if zone == nil {
		return nil
	}
	for i := range zone.RRSets {
		rr := &zone.RRSets[i]
		if SameName(rr.Name, name) && rr.Type == rrType {
			return rr
		}
	}
	return nil
}
