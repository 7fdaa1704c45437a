// Package lang holds the message catalogue for user-facing claimguard text.
// Commands format their results through it so that hosts can ship
// translations without touching the command layer.
package lang

import (
	"fmt"

	"golang.org/x/text/language"
)

// Catalogue maps message keys to localized format strings. The zero value is
// not usable; create a Catalogue through New.
type Catalogue struct {
	tags    []language.Tag
	matcher language.Matcher
	entries map[language.Tag]map[string]string
}

// New creates a Catalogue with English as its base language, pre-populated
// with the default messages of the command layer.
func New() *Catalogue {
	c := &Catalogue{entries: make(map[language.Tag]map[string]string)}
	for key, text := range defaultMessages {
		c.Register(language.AmericanEnglish, key, text)
	}
	return c
}

// Register adds a message under the key passed for the language passed,
// replacing any previous message under that key.
func (c *Catalogue) Register(tag language.Tag, key, text string) {
	if c.entries[tag] == nil {
		c.entries[tag] = make(map[string]string)
		c.tags = append(c.tags, tag)
		c.matcher = language.NewMatcher(c.tags)
	}
	c.entries[tag][key] = text
}

// Translate formats the message under the key passed in the best matching
// language for the tag passed. If no language matches, the base language is
// used; if the key is unknown there too, the key itself is returned so a
// missing translation stays visible rather than silent.
func (c *Catalogue) Translate(tag language.Tag, key string, args ...any) string {
	// Match does not return the registered tag verbatim; the index is the
	// reliable way back to the catalogue language that matched.
	_, i, _ := c.matcher.Match(tag)
	text, ok := c.entries[c.tags[i]][key]
	if !ok {
		if text, ok = c.entries[language.AmericanEnglish][key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// Message keys used by the command layer.
const (
	KeyClaimCreated      = "claim.created"
	KeyClaimAbandoned    = "claim.abandoned"
	KeyClaimAbandonedAll = "claim.abandoned_all"
	KeyClaimNotOwned     = "claim.not_owned"
	KeyClaimNotFound     = "claim.not_found"
	KeyClaimOverlap      = "claim.overlap"
	KeyClaimTooSmall     = "claim.too_small"
	KeyClaimTooLarge     = "claim.too_large"
	KeyClaimNoBlocks     = "claim.no_blocks"
	KeyClaimWilderness   = "claim.wilderness"
	KeyClaimInfo         = "claim.info"
	KeyBlocksRemaining   = "blocks.remaining"
	KeyTrustGranted      = "trust.granted"
	KeyTrustRevoked      = "trust.revoked"
	KeyTrustUnknownLevel = "trust.unknown_level"
	KeyFlagSet           = "flag.set"
	KeyFlagUnknownValue  = "flag.unknown_value"
	KeyIgnoringClaims    = "ignore.on"
	KeyRespectingClaims  = "ignore.off"
	KeyPlayerNotFound    = "player.not_found"
	KeyUsage             = "command.usage"
	KeyNoPermission      = "command.no_permission"
)

var defaultMessages = map[string]string{
	KeyClaimCreated:      "Claim created. %v blocks remaining.",
	KeyClaimAbandoned:    "Claim abandoned. %v blocks refunded.",
	KeyClaimAbandonedAll: "Abandoned %v claims.",
	KeyClaimNotOwned:     "You do not own this claim.",
	KeyClaimNotFound:     "No claim exists here.",
	KeyClaimOverlap:      "Those bounds overlap an existing claim.",
	KeyClaimTooSmall:     "That claim would be too small: %v.",
	KeyClaimTooLarge:     "That claim would be too large: %v.",
	KeyClaimNoBlocks:     "You need %v more claim blocks.",
	KeyClaimWilderness:   "You are standing in the wilderness.",
	KeyClaimInfo:         "Claim %v: type %v, bounds %v, owner %v.",
	KeyBlocksRemaining:   "You have %v claim blocks remaining.",
	KeyTrustGranted:      "Granted %v trust to %v.",
	KeyTrustRevoked:      "Revoked trust of %v.",
	KeyTrustUnknownLevel: "Unknown trust level %q.",
	KeyFlagSet:           "Flag %v set to %v.",
	KeyFlagUnknownValue:  "Unknown flag value %q.",
	KeyIgnoringClaims:    "You are now ignoring claims.",
	KeyRespectingClaims:  "You are now respecting claims.",
	KeyPlayerNotFound:    "No player named %q was found.",
	KeyUsage:             "Usage: %v",
	KeyNoPermission:      "You do not have permission to do that.",
}
