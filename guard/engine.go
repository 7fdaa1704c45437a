// Package guard wires the claim, permission, ledger and restoration packages
// into one engine that a server host embeds. The host forwards world events
// to Engine.Allowed, runs commands through guard/cmd and lets the engine's
// background tasks sweep expired claims and accrue claim blocks.
package guard

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/ledger"
	"github.com/dm-vev/claimguard/guard/permission"
	"github.com/dm-vev/claimguard/guard/restore"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// New creates an Engine using the settings of conf and starts its background
// tasks.
func (conf Config) New() *Engine {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Provider == nil {
		conf.Provider = NopProvider{}
	}
	if conf.Exec == nil {
		conf.Exec = func(world string, f func()) { f() }
	}
	if conf.DefaultFlags == nil {
		conf.DefaultFlags = DefaultFlagTables()
	}
	if conf.SweepInterval == 0 {
		conf.SweepInterval = time.Minute * 5
	}
	if conf.AccrueInterval == 0 {
		conf.AccrueInterval = time.Minute * 5
	}
	e := &Engine{
		conf:     conf,
		log:      conf.Log,
		managers: make(map[string]*claim.Manager),
		ledgers:  make(map[string]*ledger.Ledger),
		ignoring: make(map[uuid.UUID]struct{}),
		closing:  make(chan struct{}),
	}
	e.resolver = permission.Config{
		Log:             conf.Log,
		Trust:           claim.TrustResolver{Bypass: e.IgnoringClaims},
		Overrides:       conf.Overrides,
		UserPermissions: conf.UserPermissions,
		Defaults:        conf.DefaultFlags,
		DenyLogWindow:   conf.DenyLogWindow,
	}.New()
	e.restorer = restore.Config{
		Log:       conf.Log,
		Workers:   conf.RestoreWorkers,
		QueueSize: conf.RestoreQueueSize,
	}.New()
	if conf.SweepInterval > 0 {
		e.running.Add(1)
		go e.sweep()
	}
	if conf.AccrueInterval > 0 && conf.ActivePlayers != nil {
		e.running.Add(1)
		go e.accrue()
	}
	return e
}

// Engine is the top-level claim engine of a server. It owns one claim
// Manager and one block Ledger per world, the shared permission Resolver and
// the restoration workers.
//
// World, Ledger and the ignore-claims methods are safe for concurrent use.
// The Managers, Ledgers and Resolver they expose must each be used only from
// the goroutine designated for the world in question.
type Engine struct {
	conf Config
	log  *slog.Logger

	mu       sync.Mutex
	managers map[string]*claim.Manager
	ledgers  map[string]*ledger.Ledger

	igMu     sync.Mutex
	ignoring map[uuid.UUID]struct{}

	resolver *permission.Resolver
	restorer *restore.Restorer

	closing chan struct{}
	running sync.WaitGroup
	o       sync.Once
}

// World returns the claim Manager of the world named, creating it and
// loading its stored regions on first use.
func (e *Engine) World(name string) *claim.Manager {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.managers[name]; ok {
		return m
	}
	led := ledger.Config{
		Log:            e.log,
		InitialBlocks:  e.conf.InitialBlocks,
		AccrualPerHour: e.conf.AccrualPerHour,
		MaxAccrued:     e.conf.MaxAccrued,
		MinMovement:    e.conf.MinMovement,
		Provider:       worldLedgerProvider{p: e.conf.Provider, world: name},
	}.New()
	m := claim.Config{
		Log:                e.log,
		World:              name,
		Range:              e.conf.Range,
		SurfaceY:           e.conf.SurfaceY,
		MaxDepth:           e.conf.MaxDepth,
		Limits:             e.conf.Limits,
		AbandonReturnRatio: e.conf.AbandonReturnRatio,
		Ledger:             led,
		Provider:           e.conf.Provider,
	}.New()
	e.managers[name] = m
	e.ledgers[name] = led
	return m
}

// Ledger returns the claim block Ledger of the world named, creating the
// world's state on first use.
func (e *Engine) Ledger(name string) *ledger.Ledger {
	e.World(name)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledgers[name]
}

// Resolver returns the permission resolver shared by all worlds.
func (e *Engine) Resolver() *permission.Resolver {
	return e.resolver
}

// Restorer returns the restoration workers of the engine.
func (e *Engine) Restorer() *restore.Restorer {
	return e.restorer
}

// Mode returns the claim mode of the world named.
func (e *Engine) Mode(world string) Mode {
	if m, ok := e.conf.Modes[world]; ok {
		return m
	}
	return ModeSurvival
}

// IgnoreClaims switches claim bypass for the actor passed. Ignoring actors
// resolve to manager trust everywhere, so every trust-gated event is allowed
// for them.
func (e *Engine) IgnoreClaims(actor uuid.UUID, ignore bool) {
	e.igMu.Lock()
	defer e.igMu.Unlock()
	if ignore {
		e.ignoring[actor] = struct{}{}
	} else {
		delete(e.ignoring, actor)
	}
}

// IgnoringClaims reports if the actor passed currently bypasses claims.
func (e *Engine) IgnoringClaims(actor uuid.UUID) bool {
	e.igMu.Lock()
	defer e.igMu.Unlock()
	_, ok := e.ignoring[actor]
	return ok
}

// Close stops the background tasks, the restoration workers and the
// provider. It is safe to call more than once.
func (e *Engine) Close() error {
	var err error
	e.o.Do(func() {
		close(e.closing)
		e.running.Wait()
		_ = e.restorer.Close()
		err = e.conf.Provider.Close()
	})
	return err
}

// snapshotManagers returns the managers created so far. Background tasks
// iterate this snapshot instead of the live map.
func (e *Engine) snapshotManagers() []*claim.Manager {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*claim.Manager, 0, len(e.managers))
	for _, m := range e.managers {
		out = append(out, m)
	}
	return out
}

// sweep periodically deletes expired regions. Selection and deletion both
// run in one closure marshalled onto each world's goroutine, since claim
// state may only be touched there. Running them in one closure also means a
// claim touched after selection cannot still be deleted.
func (e *Engine) sweep() {
	defer e.running.Done()
	t := time.NewTicker(e.conf.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-e.closing:
			return
		case <-t.C:
		}
		for _, m := range e.snapshotManagers() {
			world := m.World()
			e.conf.Exec(world, func() {
				for _, r := range m.ExpiredRegions(time.Now(), e.conf.Expiry) {
					if err := m.Delete(r.ID()); err != nil {
						continue
					}
					e.log.Info("Expired claim removed.", "world", world, "region", r.ID(), "owner", r.Owner())
					if e.conf.OnExpire != nil {
						e.conf.OnExpire(world, r)
					}
				}
			})
		}
	}
}

// accrue periodically runs one accrual check for every online player of
// every world with claim state.
func (e *Engine) accrue() {
	defer e.running.Done()
	t := time.NewTicker(e.conf.AccrueInterval)
	defer t.Stop()
	for {
		select {
		case <-e.closing:
			return
		case <-t.C:
		}
		for _, m := range e.snapshotManagers() {
			world := m.World()
			players := e.conf.ActivePlayers(world)
			if len(players) == 0 {
				continue
			}
			led := e.Ledger(world)
			e.conf.Exec(world, func() {
				for _, p := range players {
					led.Accrue(p.UUID, mgl64.Vec3{p.Position[0], p.Position[1], p.Position[2]}, p.InVehicle, p.InLiquid)
				}
			})
		}
	}
}
