package cmd

import (
	"strings"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/lang"
)

// manageable returns the claim the source stands in if the source may manage
// it, writing the appropriate error otherwise.
func manageable(env *Env, src Source, o *Output) (*claim.Region, bool) {
	r := env.Engine.World(src.World()).At(src.Position())
	if r.Type() == claim.TypeWilderness {
		o.Error(env.Translate(src, lang.KeyClaimNotFound))
		return nil, false
	}
	trust := claim.TrustResolver{Bypass: env.Engine.IgnoringClaims}
	if !trust.HasTrust(src.UUID(), r, claim.TrustManager) {
		o.Error(env.Translate(src, lang.KeyClaimNotOwned))
		return nil, false
	}
	return r, true
}

type trustCommand struct{}

// Run grants a player trust in the claim the source stands in. Without a
// level argument, builder trust is granted.
func (trustCommand) Run(env *Env, src Source, o *Output, args []string) {
	if len(args) < 1 || len(args) > 2 {
		o.Error(env.Translate(src, lang.KeyUsage, "/trust <player> [access|container|build|manage]"))
		return
	}
	level := claim.TrustBuilder
	if len(args) == 2 {
		var ok bool
		if level, ok = claim.TrustLevelByName(strings.ToLower(args[1])); !ok || level == claim.TrustNone {
			o.Error(env.Translate(src, lang.KeyTrustUnknownLevel, args[1]))
			return
		}
	}
	r, ok := manageable(env, src, o)
	if !ok {
		return
	}
	target, ok := env.lookup(args[0])
	if !ok {
		o.Error(env.Translate(src, lang.KeyPlayerNotFound, args[0]))
		return
	}
	r.Trust(target, level)
	env.Engine.World(src.World()).Save(r)
	o.Print(env.Translate(src, lang.KeyTrustGranted, level, args[0]))
}

type untrustCommand struct{}

// Run revokes every trust level of a player in the claim the source stands
// in.
func (untrustCommand) Run(env *Env, src Source, o *Output, args []string) {
	if len(args) != 1 {
		o.Error(env.Translate(src, lang.KeyUsage, "/untrust <player>"))
		return
	}
	r, ok := manageable(env, src, o)
	if !ok {
		return
	}
	target, ok := env.lookup(args[0])
	if !ok {
		o.Error(env.Translate(src, lang.KeyPlayerNotFound, args[0]))
		return
	}
	r.UntrustAll(target)
	env.Engine.World(src.World()).Save(r)
	o.Print(env.Translate(src, lang.KeyTrustRevoked, args[0]))
}

type flagCommand struct{}

// Run sets a claim flag on the claim the source stands in. A value of "none"
// clears the flag, so resolution falls through to the type defaults again.
func (flagCommand) Run(env *Env, src Source, o *Output, args []string) {
	if len(args) != 2 {
		o.Error(env.Translate(src, lang.KeyUsage, "/claimflag <flag> <allow|deny|none>"))
		return
	}
	v, ok := claim.FlagValueByName(strings.ToLower(args[1]))
	if !ok {
		o.Error(env.Translate(src, lang.KeyFlagUnknownValue, args[1]))
		return
	}
	r, ok := manageable(env, src, o)
	if !ok {
		return
	}
	flag := strings.ToLower(args[0])
	if !strings.HasPrefix(flag, "flag.") {
		flag = "flag." + flag
	}
	r.SetFlag(flag, v)
	env.Engine.World(src.World()).Save(r)
	o.Print(env.Translate(src, lang.KeyFlagSet, flag, v))
}
