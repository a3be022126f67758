package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// schemaVersion tags the key format. Bumping it invalidates every persisted
// entry at once, which is the only safe way to change field order, defaults
// or the digest. The digest algorithm and separator are frozen so keys stay
// interoperable with previously persisted caches.
const schemaVersion = "v3"

// separator joins descriptor fields before hashing. Fields are folded
// lowercase and trimmed, and a pipe cannot survive canonicalization of any
// of them, so the join is unambiguous.
const separator = "|"

// StabilityKey returns the hex digest that addresses this descriptor in the
// cache. It is a pure function of the resolved descriptor: wall-clock time,
// upstream output and request order never influence it.
func (d Descriptor) StabilityKey() string {
	r := d.Resolve()
	joined := strings.Join([]string{
		r.CanonicalDomain,
		r.BrandName,
		r.Market,
		r.Sector,
		r.Segment,
		r.Timeframe,
		r.IndustryDefinition,
		r.seedString(),
		schemaVersion,
	}, separator)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
