package cmd

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/dm-vev/claimguard/guard/lang"
)

// RegisterBuiltin registers the built-in claim command set on the Env
// passed. The Selections store is shared with the host's selection tool.
func RegisterBuiltin(env *Env, sel *Selections) {
	env.Register(New("claim", "Creates a claim from your selection or around you.", "claim [radius] [type]", nil, claimCommand{sel: sel}))
	env.Register(New("abandonclaim", "Abandons the claim you are standing in.", "abandonclaim", nil, abandonCommand{}))
	env.Register(New("abandonallclaims", "Abandons every claim you own in this world.", "abandonallclaims", nil, abandonAllCommand{}))
	env.Register(New("claiminfo", "Shows the claim you are standing in.", "claiminfo", nil, claimInfoCommand{}))
	env.Register(New("claimblocks", "Shows your claim block balance.", "claimblocks", nil, claimBlocksCommand{}))
	env.Register(New("trust", "Grants a player trust in the claim you are standing in.", "trust <player> [access|container|build|manage]", nil, trustCommand{}))
	env.Register(New("untrust", "Revokes a player's trust in the claim you are standing in.", "untrust <player>", nil, untrustCommand{}))
	env.Register(New("claimflag", "Sets a flag on the claim you are standing in.", "claimflag <flag> <allow|deny|none>", nil, flagCommand{}))
	env.Register(New("ignoreclaims", "Toggles claim bypass.", "ignoreclaims", nil, ignoreClaimsCommand{}).RequiresOperator())
	env.Register(New("adjustbonusblocks", "Grants or revokes bonus claim blocks.", "adjustbonusblocks <player> <amount>", nil, bonusBlocksCommand{}).RequiresOperator())
}

type claimCommand struct {
	sel *Selections
}

// Run creates a claim for the source. With a radius argument the claim is a
// square centred on the source; without one the source's corner selection is
// used. Admin and town claims require operator status.
func (c claimCommand) Run(env *Env, src Source, o *Output, args []string) {
	t := claim.TypeBasic
	var radius, typeArg string
	for _, arg := range args {
		if _, err := strconv.Atoi(arg); err == nil {
			radius = arg
		} else {
			typeArg = arg
		}
	}
	if typeArg != "" {
		var ok bool
		if t, ok = claim.TypeByName(strings.ToLower(typeArg)); !ok || t == claim.TypeWilderness {
			o.Error(env.Translate(src, lang.KeyUsage, "/claim [radius] [basic|town|subdivision|admin]"))
			return
		}
	}
	if (t == claim.TypeAdmin || t == claim.TypeTown) && !src.Operator() {
		o.Error(env.Translate(src, lang.KeyNoPermission))
		return
	}

	var bounds cube.BBox
	if radius != "" {
		r, _ := strconv.Atoi(radius)
		if r < 1 {
			o.Error(env.Translate(src, lang.KeyUsage, "/claim [radius] [basic|town|subdivision|admin]"))
			return
		}
		center := cube.PosFromVec3(src.Position())
		bounds = cube.Box(center.Add(cube.Pos{-r, 0, -r}), center.Add(cube.Pos{r, 0, r}))
	} else {
		var ok bool
		if bounds, ok = c.sel.Bounds(src.UUID()); !ok {
			o.Error(env.Translate(src, lang.KeyUsage, "/claim [radius] [basic|town|subdivision|admin]"))
			return
		}
	}

	m := env.Engine.World(src.World())
	if t == claim.TypeSubdivision {
		// Subdividing requires management of the enclosing claim.
		enclosing := m.ClaimAt(bounds.Min())
		trust := claim.TrustResolver{Bypass: env.Engine.IgnoringClaims}
		if !trust.HasTrust(src.UUID(), enclosing, claim.TrustManager) {
			o.Error(env.Translate(src, lang.KeyNoPermission))
			return
		}
	}
	if _, err := m.Create(src.UUID(), bounds, t, false); err != nil {
		o.Error(claimError(env, src, err, m, bounds))
		return
	}
	c.sel.Clear(src.UUID())
	o.Print(env.Translate(src, lang.KeyClaimCreated, env.Engine.Ledger(src.World()).Remaining(src.UUID())))
}

// claimError maps a manager error to a localized message.
func claimError(env *Env, src Source, err error, m *claim.Manager, bounds cube.BBox) string {
	var sizeErr claim.SizeError
	var geoErr claim.GeometryError
	switch {
	case errors.Is(err, claim.ErrInsufficientBlocks):
		deficit := bounds.Area() - env.Engine.Ledger(m.World()).Remaining(src.UUID())
		return env.Translate(src, lang.KeyClaimNoBlocks, deficit)
	case errors.As(err, &sizeErr):
		if sizeErr.TooLarge {
			return env.Translate(src, lang.KeyClaimTooLarge, sizeErr.Error())
		}
		return env.Translate(src, lang.KeyClaimTooSmall, sizeErr.Error())
	case errors.As(err, &geoErr):
		return env.Translate(src, lang.KeyClaimOverlap)
	}
	return err.Error()
}

type abandonCommand struct{}

// Run deletes the claim the source stands in, refunding part of its area.
func (abandonCommand) Run(env *Env, src Source, o *Output, args []string) {
	m := env.Engine.World(src.World())
	r := m.At(src.Position())
	if r.Type() == claim.TypeWilderness {
		o.Error(env.Translate(src, lang.KeyClaimNotFound))
		return
	}
	if r.Owner() != src.UUID() && !env.Engine.IgnoringClaims(src.UUID()) {
		o.Error(env.Translate(src, lang.KeyClaimNotOwned))
		return
	}
	before := env.Engine.Ledger(src.World()).Remaining(r.Owner())
	if err := m.Delete(r.ID()); err != nil {
		o.Error(err.Error())
		return
	}
	refunded := env.Engine.Ledger(src.World()).Remaining(r.Owner()) - before
	o.Print(env.Translate(src, lang.KeyClaimAbandoned, refunded))
}

type abandonAllCommand struct{}

// Run deletes every claim the source owns in their current world.
func (abandonAllCommand) Run(env *Env, src Source, o *Output, args []string) {
	m := env.Engine.World(src.World())
	n := 0
	for _, r := range m.PlayerClaims(src.UUID()) {
		if err := m.Delete(r.ID()); err == nil {
			n++
		}
	}
	o.Print(env.Translate(src, lang.KeyClaimAbandonedAll, n))
}

type claimInfoCommand struct{}

// Run describes the claim the source stands in.
func (claimInfoCommand) Run(env *Env, src Source, o *Output, args []string) {
	r := env.Engine.World(src.World()).At(src.Position())
	if r.Type() == claim.TypeWilderness {
		o.Print(env.Translate(src, lang.KeyClaimWilderness))
		return
	}
	o.Print(env.Translate(src, lang.KeyClaimInfo, r.ID(), r.Type(), r.Bounds(), r.Owner()))
}

type claimBlocksCommand struct{}

// Run shows the source's remaining claim block balance.
func (claimBlocksCommand) Run(env *Env, src Source, o *Output, args []string) {
	o.Print(env.Translate(src, lang.KeyBlocksRemaining, env.Engine.Ledger(src.World()).Remaining(src.UUID())))
}

type ignoreClaimsCommand struct{}

// Run toggles claim bypass for the source.
func (ignoreClaimsCommand) Run(env *Env, src Source, o *Output, args []string) {
	ignoring := !env.Engine.IgnoringClaims(src.UUID())
	env.Engine.IgnoreClaims(src.UUID(), ignoring)
	if ignoring {
		o.Print(env.Translate(src, lang.KeyIgnoringClaims))
	} else {
		o.Print(env.Translate(src, lang.KeyRespectingClaims))
	}
}

type bonusBlocksCommand struct{}

// Run grants or revokes bonus claim blocks of a player in the source's
// world.
func (bonusBlocksCommand) Run(env *Env, src Source, o *Output, args []string) {
	if len(args) != 2 {
		o.Error(env.Translate(src, lang.KeyUsage, "/adjustbonusblocks <player> <amount>"))
		return
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		o.Error(env.Translate(src, lang.KeyUsage, "/adjustbonusblocks <player> <amount>"))
		return
	}
	target, ok := env.lookup(args[0])
	if !ok {
		o.Error(env.Translate(src, lang.KeyPlayerNotFound, args[0]))
		return
	}
	led := env.Engine.Ledger(src.World())
	led.AddBonus(target, amount)
	o.Print(env.Translate(src, lang.KeyBlocksRemaining, led.Remaining(target)))
}
