package services

import (
	"net/url"
	"strings"
)

const mapsDirBase = "https://www.google.com/maps/dir/"

// BuildMapsLink builds a Google Maps driving-directions deep link from the
// addresses of a route. Consecutive points sharing an identical address are
// collapsed into one waypoint so several orders at the same building do not
// produce redundant stops. Returns nil when fewer than two waypoints remain.
func BuildMapsLink(addresses []string) *string {
	collapsed := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if len(collapsed) > 0 && collapsed[len(collapsed)-1] == a {
			continue
		}
		collapsed = append(collapsed, a)
	}

	if len(collapsed) < 2 {
		return nil
	}

	escaped := make([]string, 0, len(collapsed))
	for _, a := range collapsed {
		escaped = append(escaped, url.PathEscape(a))
	}

	link := mapsDirBase + strings.Join(escaped, "/")
	return &link
}
