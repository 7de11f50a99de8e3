package auth

import "strings"

const DefaultTTLMinutes = 60

// Identity is what the console signs tokens as.
type Identity struct {
	Subject    string
	Roles      []string
	Secret     string
	TTLMinutes int
}

// ParseRoles splits a comma-separated role list, trimming blanks and
// dropping empty entries. Order is kept.
func ParseRoles(s string) []string {
	roles := []string{}
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func (id Identity) ttl() int {
	if id.TTLMinutes <= 0 {
		return DefaultTTLMinutes
	}
	return id.TTLMinutes
}
