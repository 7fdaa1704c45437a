package guard

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/claimdb"
	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/dm-vev/claimguard/guard/permission"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml"
)

// Mode controls how claims behave in a world.
type Mode uint8

const (
	// ModeSurvival is the default: players may claim land and events outside
	// claims follow the wilderness defaults.
	ModeSurvival Mode = iota
	// ModeCreative additionally denies building in unclaimed land, so that
	// every build in the world happens inside a claim.
	ModeCreative
	// ModeDisabled turns the module off for a world: every event is allowed
	// and no claims can be created.
	ModeDisabled
)

// parseMode returns the Mode with the name passed.
func parseMode(name string) (Mode, bool) {
	switch name {
	case "", "survival":
		return ModeSurvival, true
	case "creative":
		return ModeCreative, true
	case "disabled", "off":
		return ModeDisabled, true
	}
	return 0, false
}

// PlayerActivity describes the state of one online player for the claim
// block accrual task.
type PlayerActivity struct {
	// UUID identifies the player.
	UUID uuid.UUID
	// Position is the player's current position.
	Position [3]float64
	// InVehicle and InLiquid disqualify the player from accrual for this
	// check.
	InVehicle, InLiquid bool
}

// Config contains options for creating a claim Engine.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
	// Provider stores regions and ledgers. If nil, NopProvider is used and
	// claims do not outlive the session.
	Provider Provider
	// Modes holds the claim mode per world. Worlds without an entry run in
	// ModeSurvival.
	Modes map[string]Mode
	// Range is the vertical block range of the worlds served.
	Range cube.Range
	// SurfaceY is the reference surface height for claim depth checks.
	SurfaceY int
	// MaxDepth is the maximum distance below SurfaceY a cuboid claim may
	// extend. 0 disables the check.
	MaxDepth int
	// Limits holds the size restrictions per region type.
	Limits map[claim.Type]claim.SizeLimits
	// AbandonReturnRatio is the fraction of a deleted claim's area credited
	// back to its owner, clamped to [0,1].
	AbandonReturnRatio float64
	// InitialBlocks, AccrualPerHour, MaxAccrued and MinMovement configure
	// the claim block ledgers of all worlds.
	InitialBlocks  int
	AccrualPerHour int
	MaxAccrued     int
	MinMovement    float64
	// Expiry holds the inactivity thresholds of the expiration sweep.
	Expiry claim.ExpiryPolicy
	// SweepInterval is the interval of the expiration sweep. If 0, it
	// defaults to 5 minutes; if negative, the sweep is disabled.
	SweepInterval time.Duration
	// AccrueInterval is the interval of the block accrual task. If 0, it
	// defaults to 5 minutes; if negative, accrual is disabled.
	AccrueInterval time.Duration
	// DefaultFlags holds the flag defaults per claim type, the factory
	// settings of a fresh claim. If nil, DefaultFlagTables() is used.
	DefaultFlags map[claim.Type]map[string]claim.FlagValue
	// Overrides is the administrative override store consulted before any
	// other tier.
	Overrides *permission.Overrides
	// UserPermissions is an optional actor-scoped permission store.
	UserPermissions permission.UserPermissions
	// DenyLogWindow throttles repeated deny logging of high-frequency event
	// kinds to once per window, measured in ticks. Defaults to 100.
	DenyLogWindow int64
	// Exec marshals a function onto the goroutine designated for the world
	// passed. Background tasks use it for every claim mutation, since the
	// claim state of a world is only safe to mutate on that goroutine. If
	// nil, functions are executed inline.
	Exec func(world string, f func())
	// ActivePlayers returns the online players of a world for the accrual
	// task. If nil, no blocks accrue.
	ActivePlayers func(world string) []PlayerActivity
	// OnExpire is called after the sweep deleted an expired region, on the
	// world's goroutine. Hosts typically schedule terrestrial restoration
	// here.
	OnExpire func(world string, r *claim.Region)
	// RestoreWorkers and RestoreQueueSize configure the restoration scan
	// workers. Zero values select defaults based on the host's CPUs.
	RestoreWorkers, RestoreQueueSize int
}

// UserConfig is the user configuration of claimguard. It holds the settings
// of all worlds served by one Engine. UserConfig may be serialised as TOML
// and converted to a Config by calling UserConfig.Config().
type UserConfig struct {
	Claims struct {
		// Modes maps world names to a claim mode: "survival", "creative" or
		// "disabled". Worlds without an entry run in survival mode.
		Modes map[string]string
		// AbandonReturnRatio is the fraction of a claim's area refunded when
		// it is abandoned or expires.
		AbandonReturnRatio float64
		// SurfaceY and MaxDepth bound how far below the surface reference a
		// 3D claim may extend.
		SurfaceY int
		MaxDepth int
		// MinY and MaxY are the vertical world range.
		MinY, MaxY int
		// Basic, Town and Subdivision hold the size limits per claim type.
		Basic, Town, Subdivision struct {
			MinWidth, MinArea, MaxArea int
		}
	}
	Blocks struct {
		// Initial is the starting claim block grant of every player.
		Initial int
		// AccrualPerHour is the amount of blocks earned per active hour,
		// capped at MaxAccrued.
		AccrualPerHour int
		MaxAccrued     int
		// MinMovement is the distance in blocks a player must move between
		// accrual checks to count as active.
		MinMovement float64
		// AccrueMinutes is the interval of the accrual task in minutes.
		AccrueMinutes int
	}
	Expiration struct {
		// Days is the inactivity threshold of general claims, ChestDays the
		// threshold of claims no larger than ChestArea. 0 disables either.
		Days      int
		ChestDays int
		ChestArea int
		// SweepMinutes is the interval of the expiration sweep in minutes.
		SweepMinutes int
	}
	Storage struct {
		// SaveData controls whether claims and ledgers are persisted. If
		// true, a LevelDB claim database is opened in Folder.
		SaveData bool
		// Folder is the folder the claim database resides in.
		Folder string
	}
	// Flags holds the default flag tables per claim type, keyed by type name
	// and bare permission string, with "allow"/"deny" values.
	Flags map[string]map[string]string
	// Overrides holds administrative overrides per claim type, in the same
	// shape as Flags. Overrides outrank claim-owner flags everywhere.
	Overrides map[string]map[string]string
}

// Config converts a UserConfig to a Config, so that it may be used for
// creating an Engine. An error is returned if the claim database could not
// be opened or the configuration contains unknown names: configuration
// failure at startup is fatal, unlike storage failures during steady-state
// operation.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:                log,
		SurfaceY:           uc.Claims.SurfaceY,
		MaxDepth:           uc.Claims.MaxDepth,
		Range:              cube.Range{uc.Claims.MinY, uc.Claims.MaxY},
		AbandonReturnRatio: uc.Claims.AbandonReturnRatio,
		InitialBlocks:      uc.Blocks.Initial,
		AccrualPerHour:     uc.Blocks.AccrualPerHour,
		MaxAccrued:         uc.Blocks.MaxAccrued,
		MinMovement:        uc.Blocks.MinMovement,
		AccrueInterval:     time.Duration(uc.Blocks.AccrueMinutes) * time.Minute,
		SweepInterval:      time.Duration(uc.Expiration.SweepMinutes) * time.Minute,
		Expiry: claim.ExpiryPolicy{
			Threshold:      time.Duration(uc.Expiration.Days) * 24 * time.Hour,
			ChestThreshold: time.Duration(uc.Expiration.ChestDays) * 24 * time.Hour,
			ChestArea:      uc.Expiration.ChestArea,
		},
		Limits: map[claim.Type]claim.SizeLimits{
			claim.TypeBasic:       uc.Claims.Basic,
			claim.TypeTown:        uc.Claims.Town,
			claim.TypeSubdivision: uc.Claims.Subdivision,
		},
	}
	if len(uc.Claims.Modes) > 0 {
		conf.Modes = make(map[string]Mode, len(uc.Claims.Modes))
		for world, name := range uc.Claims.Modes {
			mode, ok := parseMode(name)
			if !ok {
				return conf, fmt.Errorf("parse claim mode: unknown mode %q for world %q", name, world)
			}
			conf.Modes[world] = mode
		}
	}
	flags, err := parseFlagTables(uc.Flags)
	if err != nil {
		return conf, fmt.Errorf("parse default flags: %w", err)
	}
	if flags != nil {
		conf.DefaultFlags = flags
	}
	overrides, err := parseFlagTables(uc.Overrides)
	if err != nil {
		return conf, fmt.Errorf("parse overrides: %w", err)
	}
	if overrides != nil {
		conf.Overrides = permission.NewOverrides()
		for t, table := range overrides {
			for perm, v := range table {
				conf.Overrides.Set("", t, perm, v)
			}
		}
	}
	if uc.Storage.SaveData {
		db, err := claimdb.Config{Log: log}.Open(uc.Storage.Folder)
		if err != nil {
			return conf, fmt.Errorf("create claim provider: %w", err)
		}
		conf.Provider = db
	}
	return conf, nil
}

// parseFlagTables converts the string-keyed flag tables of a UserConfig into
// typed ones.
func parseFlagTables(tables map[string]map[string]string) (map[claim.Type]map[string]claim.FlagValue, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	out := make(map[claim.Type]map[string]claim.FlagValue, len(tables))
	for typeName, table := range tables {
		t, ok := claim.TypeByName(typeName)
		if !ok {
			return nil, fmt.Errorf("unknown claim type %q", typeName)
		}
		out[t] = make(map[string]claim.FlagValue, len(table))
		for perm, valueName := range table {
			v, ok := claim.FlagValueByName(valueName)
			if !ok {
				return nil, fmt.Errorf("unknown flag value %q for %q", valueName, perm)
			}
			out[t][perm] = v
		}
	}
	return out, nil
}

// DefaultFlagTables returns the factory flag defaults per claim type used
// when a Config does not supply its own. Basic and town claims protect
// builds and containers; admin claims deny everything not explicitly
// trusted; the wilderness permits everything except what operators override.
func DefaultFlagTables() map[claim.Type]map[string]claim.FlagValue {
	return map[claim.Type]map[string]claim.FlagValue{
		claim.TypeBasic: {
			"flag.block-break":        claim.FlagDeny,
			"flag.block-place":        claim.FlagDeny,
			"flag.block-modify":       claim.FlagDeny,
			"flag.interact-inventory": claim.FlagDeny,
			"flag.explosion":          claim.FlagDeny,
			"flag.explosion-block":    claim.FlagDeny,
			"flag.entity-damage":      claim.FlagDeny,
			"flag.fire-spread":        claim.FlagDeny,
			"flag.item-use":           claim.FlagAllow,
			"flag.interact-block":     claim.FlagAllow,
			"flag.enter-claim":        claim.FlagAllow,
			"flag.exit-claim":         claim.FlagAllow,
		},
		claim.TypeTown: {
			"flag.block-break":        claim.FlagDeny,
			"flag.block-place":        claim.FlagDeny,
			"flag.block-modify":       claim.FlagDeny,
			"flag.interact-inventory": claim.FlagDeny,
			"flag.explosion":          claim.FlagDeny,
			"flag.explosion-block":    claim.FlagDeny,
			"flag.entity-damage":      claim.FlagDeny,
			"flag.fire-spread":        claim.FlagDeny,
			"flag.enter-claim":        claim.FlagAllow,
			"flag.exit-claim":         claim.FlagAllow,
		},
		claim.TypeAdmin: {
			"flag.block-break":        claim.FlagDeny,
			"flag.block-place":        claim.FlagDeny,
			"flag.block-modify":       claim.FlagDeny,
			"flag.interact-block":     claim.FlagDeny,
			"flag.interact-inventory": claim.FlagDeny,
			"flag.explosion":          claim.FlagDeny,
			"flag.explosion-block":    claim.FlagDeny,
			"flag.entity-damage":      claim.FlagDeny,
			"flag.fire-spread":        claim.FlagDeny,
		},
		claim.TypeWilderness: {
			"flag.block-break":    claim.FlagAllow,
			"flag.block-place":    claim.FlagAllow,
			"flag.interact-block": claim.FlagAllow,
			"flag.item-use":       claim.FlagAllow,
		},
	}
}

// DefaultConfig returns a UserConfig with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.Claims.AbandonReturnRatio = 1
	c.Claims.SurfaceY = 63
	c.Claims.MaxDepth = 0
	c.Claims.MinY, c.Claims.MaxY = -64, 319
	c.Claims.Basic.MinWidth = 5
	c.Claims.Basic.MinArea = 100
	c.Claims.Town.MinWidth = 32
	c.Claims.Town.MinArea = 1024
	c.Claims.Subdivision.MinWidth = 1
	c.Claims.Subdivision.MinArea = 1
	c.Blocks.Initial = 100
	c.Blocks.AccrualPerHour = 120
	c.Blocks.MaxAccrued = 80000
	c.Blocks.MinMovement = 8
	c.Blocks.AccrueMinutes = 5
	c.Expiration.Days = 60
	c.Expiration.ChestDays = 7
	c.Expiration.ChestArea = 16
	c.Expiration.SweepMinutes = 5
	c.Storage.SaveData = true
	c.Storage.Folder = "claims"
	return c
}

// ReadConfig reads a UserConfig from the TOML file at the path passed and
// converts it to a Config. If the file does not exist, it is created with the
// default configuration, so a fresh host ends up with an editable file on
// disk.
func ReadConfig(path string, log *slog.Logger) (Config, error) {
	uc := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		encoded, err := toml.Marshal(uc)
		if err != nil {
			return Config{}, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
		return uc.Config(log)
	}
	if len(data) != 0 {
		if err := toml.Unmarshal(data, &uc); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}
	return uc.Config(log)
}
