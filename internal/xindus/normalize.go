package xindus

import (
	"regexp"
	"strings"
	"time"
)

// countryCodes maps lower-cased country names and aliases to ISO-2 codes.
// Already-2-letter inputs pass through NormalizeCountry uppercased.
var countryCodes = map[string]string{
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"america":                  "US",
	"india":                    "IN",
	"united kingdom":           "GB",
	"great britain":            "GB",
	"england":                  "GB",
	"canada":                   "CA",
	"australia":                "AU",
	"germany":                  "DE",
	"france":                   "FR",
	"italy":                    "IT",
	"spain":                    "ES",
	"netherlands":              "NL",
	"the netherlands":          "NL",
	"belgium":                  "BE",
	"switzerland":              "CH",
	"china":                    "CN",
	"japan":                    "JP",
	"south korea":              "KR",
	"republic of korea":        "KR",
	"singapore":                "SG",
	"hong kong":                "HK",
	"united arab emirates":     "AE",
	"uae":                      "AE",
	"saudi arabia":             "SA",
	"mexico":                   "MX",
	"brazil":                   "BR",
	"new zealand":              "NZ",
	"ireland":                  "IE",
	"sweden":                   "SE",
	"norway":                   "NO",
	"denmark":                  "DK",
	"poland":                   "PL",
	"vietnam":                  "VN",
	"thailand":                 "TH",
	"malaysia":                 "MY",
	"indonesia":                "ID",
	"philippines":              "PH",
	"bangladesh":               "BD",
	"sri lanka":                "LK",
	"nepal":                    "NP",
	"south africa":             "ZA",
	"israel":                   "IL",
	"turkey":                   "TR",
}

// NormalizeCountry maps a country name or alias to its ISO-2 code. Two-letter
// inputs are assumed to already be codes and pass through uppercased. Unknown
// names return the empty string.
func NormalizeCountry(country string) string {
	c := strings.TrimSpace(country)
	if c == "" {
		return ""
	}
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	if code, ok := countryCodes[strings.ToLower(c)]; ok {
		return code
	}
	return ""
}

var usZipRe = regexp.MustCompile(`^(\d{5})(-\d{4})?$`)

// NormalizeZip truncates US ZIP+4 postal codes to the 5-digit form. The rule
// also applies when the country is unspecified; other countries' codes are
// returned trimmed but otherwise untouched.
func NormalizeZip(zip, country string) string {
	z := strings.TrimSpace(zip)
	code := NormalizeCountry(country)
	if code != "" && code != "US" {
		return z
	}
	if m := usZipRe.FindStringSubmatch(z); m != nil {
		return m[1]
	}
	return z
}

// StripCode removes embedded separators from a classification code.
func StripCode(code string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "", "/", "").Replace(strings.TrimSpace(code))
}

// isoMidnight is the downstream platform's date format: midnight-UTC ISO with
// millisecond precision.
const isoMidnight = "2006-01-02T15:04:05.000Z"

// dateLayouts are tried in order. Day-first layouts accept '.', '/', and '-'
// separators with one- or two-digit day and month.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2.1.2006",
	"02.01.2006",
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// NormalizeDate parses a date string in any accepted layout and renders it as
// midnight-UTC ISO. Unparseable input falls back to the current time.
func NormalizeDate(date string) string {
	d := strings.TrimSpace(date)
	if d != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				y, m, day := t.UTC().Date()
				return time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Format(isoMidnight)
			}
		}
	}
	return time.Now().UTC().Format(isoMidnight)
}
