package permission

import (
	"regexp"
	"strings"
)

// prefix is the first element of every composed permission string.
const prefix = "flag"

// metaPattern detects a trailing numeric variant suffix on an identifier,
// such as the "14" in "wool14". The variant is split off and re-appended at
// the end of the composed permission string, after the source identifier.
var metaPattern = regexp.MustCompile(`^(.*?)\.?([0-9]+)$`)

// identPattern is the character set a normalised identifier may consist of.
var identPattern = regexp.MustCompile(`^[a-z0-9_.\-]+$`)

// Key is a decomposed permission string for one event. The resolver matches
// its candidates from most to least specific against flag and override
// stores.
type Key struct {
	base   string
	target string
	source string
	meta   string

	// malformed is true if a target or source identifier could not be
	// parsed and was degraded to the empty string.
	malformed bool
}

// NewKey composes the permission Key for the event kind, target identifier
// and source identifier passed. Identifiers are lowercased and namespace
// colons are replaced with dots, so "minecraft:tnt" becomes "minecraft.tnt".
// A trailing numeric variant suffix on the target is split into the meta
// part. Identifiers that cannot be parsed degrade to the empty string; they
// never fail the composition.
func NewKey(kind Kind, target, source string) Key {
	k := Key{base: prefix + "." + kind.Name}
	var ok bool
	if k.target, ok = normaliseIdent(target); !ok {
		k.malformed = true
	}
	if k.source, ok = normaliseIdent(source); !ok {
		k.malformed = true
	}
	if match := metaPattern.FindStringSubmatch(k.target); match != nil && match[1] != "" {
		k.target, k.meta = match[1], "."+match[2]
	}
	return k
}

// Bare returns the permission string without target and source, such as
// "flag.block-break".
func (k Key) Bare() string {
	return k.base
}

// TargetOnly returns the permission string with the target appended, such as
// "flag.block-break.minecraft.tnt". It equals Bare if the event has no
// target.
func (k Key) TargetOnly() string {
	if k.target == "" {
		return k.base
	}
	return k.base + "." + k.target + k.meta
}

// Full returns the most specific permission string, carrying both target and
// source, such as "flag.block-break.minecraft.ore.source.minecraft.tnt". The
// target's variant suffix, if any, trails the source. Full equals TargetOnly
// if the event has no source.
func (k Key) Full() string {
	if k.target == "" || k.source == "" {
		return k.TargetOnly()
	}
	return k.base + "." + k.target + ".source." + k.source + k.meta
}

// Candidates returns the permission strings of the Key from most to least
// specific, without duplicates.
func (k Key) Candidates() []string {
	out := make([]string, 0, 3)
	for _, s := range []string{k.Full(), k.TargetOnly(), k.Bare()} {
		if n := len(out); n == 0 || out[n-1] != s {
			out = append(out, s)
		}
	}
	return out
}

// Malformed reports if a target or source identifier was degraded to the
// empty string during composition.
func (k Key) Malformed() bool {
	return k.malformed
}

// normaliseIdent normalises an object identifier for use in a permission
// string. The bool returned is false if the identifier was non-empty but
// unparseable.
func normaliseIdent(id string) (string, bool) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", true
	}
	id = strings.ReplaceAll(id, ":", ".")
	if !identPattern.MatchString(id) {
		return "", false
	}
	return id, true
}
