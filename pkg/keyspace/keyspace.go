// Package keyspace defines the upstream keyspaces served by the proxy
// and the UID classification rules for the Enka-backed games.
package keyspace

import (
	"fmt"
	"strconv"
	"time"
)

// Game identifies one upstream keyspace.
type Game string

const (
	// GenshinImpact is the Genshin Impact showcase keyspace.
	GenshinImpact Game = "gi"

	// StarRail is the Honkai: Star Rail showcase keyspace.
	StarRail Game = "hsr"

	// ZenlessZoneZero is the Zenless Zone Zero showcase keyspace.
	ZenlessZoneZero Game = "zzz"

	// IdentityV is the NetEase Identity V role-lookup keyspace.
	IdentityV Game = "idv"
)

// ttls maps each keyspace to how long a cached value stays fresh.
var ttls = map[Game]time.Duration{
	GenshinImpact:   5 * time.Minute,
	StarRail:        5 * time.Minute,
	ZenlessZoneZero: 15 * time.Minute,
	IdentityV:       5 * time.Minute,
}

// DefaultTTL is used for keyspaces without a registered TTL.
const DefaultTTL = 5 * time.Minute

// TTL returns the freshness duration for a keyspace.
func TTL(game Game) time.Duration {
	if ttl, ok := ttls[game]; ok {
		return ttl
	}
	return DefaultTTL
}

// IsShowcase reports whether game is one of the Enka showcase keyspaces.
func IsShowcase(game Game) bool {
	switch game {
	case GenshinImpact, StarRail, ZenlessZoneZero:
		return true
	}
	return false
}

// DetectGame classifies a numeric UID into a showcase keyspace.
// Enka UIDs are 9 digits; the leading digit distinguishes the game:
// 6 is Star Rail, 1 is Zenless Zone Zero, everything else is Genshin.
// Returns ok=false for identifiers that match no keyspace.
func DetectGame(uid int64) (Game, bool) {
	s := strconv.FormatInt(uid, 10)
	if len(s) != 9 {
		return "", false
	}
	switch s[0] {
	case '6':
		return StarRail, true
	case '1':
		return ZenlessZoneZero, true
	default:
		return GenshinImpact, true
	}
}

// Key builds the cache key for an identifier within a keyspace.
// Format: "{game}:{id}", e.g. "gi:800000000".
func Key(game Game, id int64) string {
	return fmt.Sprintf("%s:%d", game, id)
}
