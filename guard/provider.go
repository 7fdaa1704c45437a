package guard

import (
	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/ledger"
	"github.com/google/uuid"
)

// Provider is the combined storage interface of an Engine. It persists the
// region records of all worlds and the claim block ledgers of all players.
// claimdb.DB implements it.
type Provider interface {
	claim.Provider
	// LoadLedger returns the stored ledger entry of the actor in the world
	// passed. The bool returned is false if no entry exists yet.
	LoadLedger(world string, actor uuid.UUID) (ledger.Data, bool, error)
	// SaveLedger stores the ledger entry of the actor in the world passed.
	SaveLedger(world string, actor uuid.UUID, d ledger.Data) error
	// Close closes the provider once the Engine shuts down.
	Close() error
}

// NopProvider implements Provider without storing anything. Claims and
// ledgers do not outlive the session with it.
type NopProvider struct {
	claim.NopProvider
}

// LoadLedger ...
func (NopProvider) LoadLedger(string, uuid.UUID) (ledger.Data, bool, error) {
	return ledger.Data{}, false, nil
}

// SaveLedger ...
func (NopProvider) SaveLedger(string, uuid.UUID, ledger.Data) error { return nil }

// Close ...
func (NopProvider) Close() error { return nil }

// worldLedgerProvider adapts a Provider to the single-world ledger.Provider
// interface.
type worldLedgerProvider struct {
	p     Provider
	world string
}

// LoadLedger ...
func (p worldLedgerProvider) LoadLedger(actor uuid.UUID) (ledger.Data, bool, error) {
	return p.p.LoadLedger(p.world, actor)
}

// SaveLedger ...
func (p worldLedgerProvider) SaveLedger(actor uuid.UUID, d ledger.Data) error {
	return p.p.SaveLedger(p.world, actor, d)
}
