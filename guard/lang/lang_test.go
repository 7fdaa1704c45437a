package lang

import (
	"testing"

	"golang.org/x/text/language"
)

func TestCatalogueDefaults(t *testing.T) {
	c := New()
	if got := c.Translate(language.AmericanEnglish, KeyClaimWilderness); got != "You are standing in the wilderness." {
		t.Fatalf("got %q", got)
	}
	if got := c.Translate(language.AmericanEnglish, KeyBlocksRemaining, 42); got != "You have 42 claim blocks remaining." {
		t.Fatalf("got %q", got)
	}
}

func TestCatalogueRegisterAndMatch(t *testing.T) {
	c := New()
	c.Register(language.German, KeyClaimWilderness, "Du stehst in der Wildnis.")

	if got := c.Translate(language.German, KeyClaimWilderness); got != "Du stehst in der Wildnis." {
		t.Fatalf("got %q", got)
	}
	// Austrian German matches the German entry.
	if got := c.Translate(language.MustParse("de-AT"), KeyClaimWilderness); got != "Du stehst in der Wildnis." {
		t.Fatalf("expected regional variant to match, got %q", got)
	}
	// Keys missing from the matched language fall back to English.
	if got := c.Translate(language.German, KeyClaimNotFound); got != "No claim exists here." {
		t.Fatalf("expected English fallback, got %q", got)
	}
}

func TestCatalogueUnknownKey(t *testing.T) {
	c := New()
	if got := c.Translate(language.AmericanEnglish, "claim.bogus"); got != "claim.bogus" {
		t.Fatalf("expected unknown key to be returned verbatim, got %q", got)
	}
}
