package timeutil

import (
	"strings"
)

// locationZones maps location keywords that may appear in request text to
// IANA zone names. Matching is whole-word and case-insensitive.
var locationZones = map[string]string{
	"sydney":        "Australia/Sydney",
	"melbourne":     "Australia/Melbourne",
	"brisbane":      "Australia/Brisbane",
	"perth":         "Australia/Perth",
	"adelaide":      "Australia/Adelaide",
	"auckland":      "Pacific/Auckland",
	"wellington":    "Pacific/Auckland",
	"tokyo":         "Asia/Tokyo",
	"singapore":     "Asia/Singapore",
	"hong kong":     "Asia/Hong_Kong",
	"mumbai":        "Asia/Kolkata",
	"delhi":         "Asia/Kolkata",
	"bangalore":     "Asia/Kolkata",
	"london":        "Europe/London",
	"dublin":        "Europe/Dublin",
	"paris":         "Europe/Paris",
	"berlin":        "Europe/Berlin",
	"amsterdam":     "Europe/Amsterdam",
	"zurich":        "Europe/Zurich",
	"new york":      "America/New_York",
	"boston":        "America/New_York",
	"toronto":       "America/Toronto",
	"chicago":       "America/Chicago",
	"austin":        "America/Chicago",
	"denver":        "America/Denver",
	"seattle":       "America/Los_Angeles",
	"san francisco": "America/Los_Angeles",
	"los angeles":   "America/Los_Angeles",
}

// abbreviationZones maps explicit timezone abbreviations to IANA zone names.
// Ambiguous abbreviations resolve to their most common reading.
var abbreviationZones = map[string]string{
	"utc":  "UTC",
	"gmt":  "UTC",
	"aest": "Australia/Sydney",
	"aedt": "Australia/Sydney",
	"awst": "Australia/Perth",
	"acst": "Australia/Adelaide",
	"nzst": "Pacific/Auckland",
	"nzdt": "Pacific/Auckland",
	"jst":  "Asia/Tokyo",
	"sgt":  "Asia/Singapore",
	"hkt":  "Asia/Hong_Kong",
	"ist":  "Asia/Kolkata",
	"bst":  "Europe/London",
	"cet":  "Europe/Berlin",
	"cest": "Europe/Berlin",
	"est":  "America/New_York",
	"edt":  "America/New_York",
	"cst":  "America/Chicago",
	"cdt":  "America/Chicago",
	"mst":  "America/Denver",
	"mdt":  "America/Denver",
	"pst":  "America/Los_Angeles",
	"pdt":  "America/Los_Angeles",
}

// ZoneSource records which rule resolved the timezone.
type ZoneSource string

const (
	ZoneFromLocation     ZoneSource = "location"
	ZoneFromAbbreviation ZoneSource = "abbreviation"
	ZoneFromSystem       ZoneSource = "system"
)

// ResolveZone picks the IANA timezone for a request's times: a location
// keyword in the text wins, then an explicit abbreviation, then the
// caller-supplied system timezone. When several keywords appear the earliest
// mention wins, so resolution is deterministic. The result applies
// identically to start and end, so it is evaluated once per request.
func ResolveZone(text, systemZone string) (string, ZoneSource) {
	lower := strings.ToLower(text)

	if zone, ok := earliestMatch(lower, locationZones); ok {
		return zone, ZoneFromLocation
	}
	if zone, ok := earliestMatch(lower, abbreviationZones); ok {
		return zone, ZoneFromAbbreviation
	}
	return systemZone, ZoneFromSystem
}

// earliestMatch returns the zone whose keyword appears first in the text,
// preferring the longer keyword on a shared position ("new york" over "york").
func earliestMatch(lower string, table map[string]string) (string, bool) {
	bestIdx := -1
	bestLen := 0
	bestZone := ""
	for keyword, zone := range table {
		idx := wordIndex(lower, keyword)
		if idx < 0 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx || (idx == bestIdx && len(keyword) > bestLen) {
			bestIdx, bestLen, bestZone = idx, len(keyword), zone
		}
	}
	return bestZone, bestIdx >= 0
}

// wordIndex reports the first whole-word occurrence of word in s, or -1.
func wordIndex(s, word string) int {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return -1
		}
		i += idx
		before := i == 0 || !isWordChar(s[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(s) || !isWordChar(s[afterIdx])
		if before && after {
			return i
		}
		idx = i + len(word)
	}
}
