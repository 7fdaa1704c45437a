// Package ledger tracks the claim block budget of players. Claim blocks are
// the currency of claimed area: a player accrues them over time while active,
// may be granted bonus blocks, and spends them whenever a claim that requires
// blocks is created or grown.
package ledger

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Data is the serialisable part of a ledger entry.
type Data struct {
	// Accrued is the amount of blocks earned over time, capped at the
	// configured maximum.
	Accrued int `json:"accrued"`
	// Bonus is the amount of blocks granted by administrators or refunds.
	Bonus int `json:"bonus"`
	// Initial is the starting grant of the entry.
	Initial int `json:"initial"`
	// Spent is the total area currently claimed by the player across claims
	// that require blocks.
	Spent int `json:"spent"`
}

// Provider stores and loads ledger entries. Missing entries are not an
// error: every actor implicitly has a ledger from first contact.
type Provider interface {
	LoadLedger(actor uuid.UUID) (Data, bool, error)
	SaveLedger(actor uuid.UUID, d Data) error
}

// NopProvider implements Provider without storing anything.
type NopProvider struct{}

// LoadLedger ...
func (NopProvider) LoadLedger(uuid.UUID) (Data, bool, error) { return Data{}, false, nil }

// SaveLedger ...
func (NopProvider) SaveLedger(uuid.UUID, Data) error { return nil }

// Config holds the options of a Ledger.
type Config struct {
	// Log is the logger used for provider failures. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// InitialBlocks is the starting grant of a newly created entry.
	InitialBlocks int
	// AccrualPerHour is the amount of blocks an active player earns per
	// hour. Each accrual interval credits a twelfth of it.
	AccrualPerHour int
	// MaxAccrued caps the accrued block count of an entry. If zero or lower,
	// no accrual happens at all.
	MaxAccrued int
	// MinMovement is the distance in blocks a player must have moved since
	// the previous accrual check to count as active. Defaults to 8.
	MinMovement float64
	// Provider persists entries. If nil, NopProvider is used.
	Provider Provider
}

// New creates a Ledger using the settings of conf.
func (conf Config) New() *Ledger {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Provider == nil {
		conf.Provider = NopProvider{}
	}
	if conf.MinMovement <= 0 {
		conf.MinMovement = 8
	}
	return &Ledger{conf: conf, entries: make(map[uuid.UUID]*entry)}
}

// Ledger holds the claim block entries of all players of one scope, usually a
// world. A Ledger must only be used from the goroutine designated for that
// scope.
type Ledger struct {
	conf    Config
	entries map[uuid.UUID]*entry
}

type entry struct {
	Data
	lastPos mgl64.Vec3
	tracked bool
}

// Remaining returns the amount of blocks the actor may still spend:
// accrued + bonus + initial minus the area already claimed.
func (l *Ledger) Remaining(actor uuid.UUID) int {
	e := l.entry(actor)
	return e.Accrued + e.Bonus + e.Initial - e.Spent
}

// Debit spends the amount of blocks passed from the actor's budget. It
// returns false and leaves the entry unchanged if the remaining budget does
// not cover the amount.
func (l *Ledger) Debit(actor uuid.UUID, amount int) bool {
	if amount < 0 {
		return false
	}
	e := l.entry(actor)
	if e.Accrued+e.Bonus+e.Initial-e.Spent < amount {
		return false
	}
	e.Spent += amount
	l.save(actor, e)
	return true
}

// Credit returns the amount of blocks passed to the actor's budget. Credit
// beyond what the actor has spent is kept as bonus blocks, so a Debit
// followed by an equal Credit always restores the previous remaining budget.
func (l *Ledger) Credit(actor uuid.UUID, amount int) {
	if amount <= 0 {
		return
	}
	e := l.entry(actor)
	if amount > e.Spent {
		e.Bonus += amount - e.Spent
		e.Spent = 0
	} else {
		e.Spent -= amount
	}
	l.save(actor, e)
}

// AddBonus grants the actor the amount of bonus blocks passed. A negative
// amount revokes bonus blocks, to a minimum of zero.
func (l *Ledger) AddBonus(actor uuid.UUID, amount int) {
	e := l.entry(actor)
	e.Bonus += amount
	if e.Bonus < 0 {
		e.Bonus = 0
	}
	l.save(actor, e)
}

// Entry returns a copy of the actor's ledger data.
func (l *Ledger) Entry(actor uuid.UUID) Data {
	return l.entry(actor).Data
}

// Accrue runs one accrual check for the actor at the position passed. The
// actor earns a twelfth of the hourly accrual rate, capped at the configured
// maximum, but only while judged active: moved at least the configured
// distance since the previous check while neither riding a vehicle nor
// swimming.
func (l *Ledger) Accrue(actor uuid.UUID, pos mgl64.Vec3, inVehicle, inLiquid bool) {
	if l.conf.MaxAccrued <= 0 || l.conf.AccrualPerHour <= 0 {
		return
	}
	e := l.entry(actor)
	moved := pos.Sub(e.lastPos).Len()
	first := !e.tracked
	e.lastPos, e.tracked = pos, true
	if first || inVehicle || inLiquid || moved < l.conf.MinMovement {
		return
	}
	e.Accrued += l.conf.AccrualPerHour / 12
	if e.Accrued > l.conf.MaxAccrued {
		e.Accrued = l.conf.MaxAccrued
	}
	l.save(actor, e)
}

// entry returns the live entry of the actor, loading it from the provider or
// creating it with the configured defaults on first contact.
func (l *Ledger) entry(actor uuid.UUID) *entry {
	if e, ok := l.entries[actor]; ok {
		return e
	}
	e := &entry{}
	d, found, err := l.conf.Provider.LoadLedger(actor)
	if err != nil {
		l.conf.Log.Error("load ledger entry: "+err.Error(), "actor", actor)
	}
	if found {
		e.Data = d
	} else {
		e.Initial = l.conf.InitialBlocks
	}
	l.entries[actor] = e
	return e
}

func (l *Ledger) save(actor uuid.UUID, e *entry) {
	if err := l.conf.Provider.SaveLedger(actor, e.Data); err != nil {
		l.conf.Log.Error("save ledger entry: "+err.Error(), "actor", actor)
	}
}
