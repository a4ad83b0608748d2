package atlas

import "strings"

// aliases maps folded alternate spellings to canonical region names.
var aliases = map[string]string{
	"usa":                      "United States",
	"united states of america": "United States",
	"america":                  "United States",
	"uk":                       "United Kingdom",
	"great britain":            "United Kingdom",
	"england":                  "United Kingdom",
	"holland":                  "Netherlands",
	"macedonia":                "North Macedonia",
	"czechia":                  "Czech Republic",
	"russia":                   "Russia",
	"uae":                      "United Arab Emirates",
}

// Normalize collapses runs of whitespace and trims the input. Case is kept.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fold(s string) string {
	return strings.ToLower(Normalize(s))
}

// FindRegion resolves free-text input to a region. It tries a case-insensitive
// exact match, then the alias table, then a scan of grouping member lists.
// An alias that points at a region missing from the atlas resolves to nothing.
func (a *Atlas) FindRegion(name string) (*Region, bool) {
	key := fold(name)
	if key == "" {
		return nil, false
	}
	if r, ok := a.regions[Normalize(name)]; ok {
		return r, true
	}
	for _, n := range a.order {
		if strings.ToLower(n) == key {
			return a.regions[n], true
		}
	}
	if canonical, ok := aliases[key]; ok {
		r, ok := a.regions[canonical]
		return r, ok
	}
	for _, g := range a.groupOrder {
		for _, m := range a.groups[g] {
			if strings.ToLower(m) == key {
				if r, ok := a.regions[m]; ok {
					return r, true
				}
			}
		}
	}
	return nil, false
}

// InGroup reports whether the input names a member of group, returning the
// member's canonical name. The World group is the union of every grouping and
// every loaded region.
func (a *Atlas) InGroup(group, name string) (string, bool) {
	members, ok := a.groups[group]
	if !ok {
		return "", false
	}
	key := fold(name)
	if key == "" {
		return "", false
	}
	canonical := ""
	if r, ok := a.FindRegion(name); ok {
		canonical = r.Name
	}
	match := func(list []string) (string, bool) {
		for _, m := range list {
			if m == canonical || strings.ToLower(m) == key {
				return m, true
			}
		}
		return "", false
	}
	if m, ok := match(members); ok {
		return m, true
	}
	if group != WorldGroup {
		return "", false
	}
	for _, g := range a.groupOrder {
		if m, ok := match(a.groups[g]); ok {
			return m, true
		}
	}
	return match(a.order)
}
