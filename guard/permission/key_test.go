package permission

import (
	"slices"
	"testing"
)

func TestKeyComposition(t *testing.T) {
	k := NewKey(BlockBreak, "minecraft:iron_ore", "minecraft:tnt")
	if got := k.Bare(); got != "flag.block-break" {
		t.Fatalf("bare: got %q", got)
	}
	if got := k.TargetOnly(); got != "flag.block-break.minecraft.iron_ore" {
		t.Fatalf("target only: got %q", got)
	}
	if got := k.Full(); got != "flag.block-break.minecraft.iron_ore.source.minecraft.tnt" {
		t.Fatalf("full: got %q", got)
	}
	want := []string{
		"flag.block-break.minecraft.iron_ore.source.minecraft.tnt",
		"flag.block-break.minecraft.iron_ore",
		"flag.block-break",
	}
	if got := k.Candidates(); !slices.Equal(got, want) {
		t.Fatalf("candidates: got %v", got)
	}
}

func TestKeyMetaSuffix(t *testing.T) {
	// A trailing numeric variant moves behind the source identifier.
	k := NewKey(BlockPlace, "minecraft:wool14", "minecraft:dispenser")
	if got := k.TargetOnly(); got != "flag.block-place.minecraft.wool.14" {
		t.Fatalf("target only: got %q", got)
	}
	if got := k.Full(); got != "flag.block-place.minecraft.wool.source.minecraft.dispenser.14" {
		t.Fatalf("full: got %q", got)
	}

	// A purely numeric identifier keeps no meta: there would be no base
	// identifier left.
	k = NewKey(BlockPlace, "14", "")
	if got := k.TargetOnly(); got != "flag.block-place.14" {
		t.Fatalf("numeric target: got %q", got)
	}
}

func TestKeyUppercaseAndColons(t *testing.T) {
	k := NewKey(InteractInventory, "Minecraft:Chest", "")
	if got := k.TargetOnly(); got != "flag.interact-inventory.minecraft.chest" {
		t.Fatalf("got %q", got)
	}
	if k.Malformed() {
		t.Fatalf("expected well-formed key")
	}
}

func TestKeyMalformedDegrades(t *testing.T) {
	k := NewKey(BlockBreak, "mine craft:po~tato", "minecraft:tnt")
	if !k.Malformed() {
		t.Fatalf("expected malformed flag")
	}
	// The malformed target degrades to the empty string: only the source-less
	// forms remain, and composition never fails.
	if got := k.TargetOnly(); got != "flag.block-break" {
		t.Fatalf("got %q", got)
	}
	want := []string{"flag.block-break"}
	if got := k.Candidates(); !slices.Equal(got, want) {
		t.Fatalf("candidates: got %v", got)
	}
}

func TestKeyEmptyIdentifiers(t *testing.T) {
	k := NewKey(Explosion, "", "")
	if k.Malformed() {
		t.Fatalf("expected empty identifiers to be well-formed")
	}
	if got := k.Candidates(); !slices.Equal(got, []string{"flag.explosion"}) {
		t.Fatalf("candidates: got %v", got)
	}
	// A source without target cannot compose the source form.
	k = NewKey(Explosion, "", "minecraft:creeper")
	if got := k.Full(); got != "flag.explosion" {
		t.Fatalf("full without target: got %q", got)
	}
}
