// Package identity derives a stable, content-addressed fingerprint from the
// loosely specified fields that describe a brand.
package identity

import (
	"strconv"
	"strings"
)

// Defaults applied to optional descriptor fields before hashing, so an
// omitted field and an explicitly default-valued field are indistinguishable.
const (
	DefaultMarket    = "global"
	DefaultSegment   = "b2c"
	DefaultTimeframe = "current"
)

// Descriptor is the tuple of fields that determines whether two requests
// refer to the same entity for caching purposes.
type Descriptor struct {
	CanonicalDomain    string
	BrandName          string
	Market             string
	Sector             string
	Segment            string
	Timeframe          string
	IndustryDefinition string

	// Seed participates in identity: the same brand scored under a
	// different seed is a different cache entry. Nil means unseeded.
	Seed *int64
}

// CanonicalDomain normalizes a free-text URL-like string into a lowercase
// host token. Pure string processing; the value is never fetched.
func CanonicalDomain(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	if s == "" {
		return "", ErrEmptyDomain
	}
	return s, nil
}

// Resolve lowercases and trims every field and fills documented defaults for
// the optional ones. Hashing always operates on a resolved descriptor.
func (d Descriptor) Resolve() Descriptor {
	d.CanonicalDomain = fold(d.CanonicalDomain)
	d.BrandName = fold(d.BrandName)
	d.Market = foldOr(d.Market, DefaultMarket)
	d.Sector = fold(d.Sector)
	d.Segment = foldOr(d.Segment, DefaultSegment)
	d.Timeframe = foldOr(d.Timeframe, DefaultTimeframe)
	d.IndustryDefinition = fold(d.IndustryDefinition)
	return d
}

// SeedValue returns the seed used for numeric normalization. An unseeded
// request normalizes with seed 0; identity hashing still distinguishes the
// two via seedString.
func (d Descriptor) SeedValue() int64 {
	if d.Seed == nil {
		return 0
	}
	return *d.Seed
}

func (d Descriptor) seedString() string {
	if d.Seed == nil {
		return ""
	}
	return strconv.FormatInt(*d.Seed, 10)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func foldOr(s, def string) string {
	if v := fold(s); v != "" {
		return v
	}
	return def
}
