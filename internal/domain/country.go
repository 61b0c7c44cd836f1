package domain

import "fmt"

// Country is a market the service redirects traffic for. The set is closed:
// values outside it are rejected at the boundary and never stored.
type Country string

const (
	CountryRU Country = "RU"
	CountryKZ Country = "KZ"
)

// CountryAll is the zero value, meaning "no country filter" in aggregation
// queries. It is never a valid input for redirects or allocations.
const CountryAll Country = ""

var countries = map[Country]struct{}{
	CountryRU: {},
	CountryKZ: {},
}

// ParseCountry converts a raw country code into a Country.
func ParseCountry(code string) (Country, error) {
	c := Country(code)
	if !c.Valid() {
		return "", fmt.Errorf("unknown country %q", code)
	}
	return c, nil
}

// Valid reports whether the country belongs to the enumerated set.
func (c Country) Valid() bool {
	_, ok := countries[c]
	return ok
}

func (c Country) String() string {
	return string(c)
}
