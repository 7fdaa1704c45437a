package claim

import "github.com/google/uuid"

// Provider stores and loads region records. Providers are consulted by a
// Manager when it is created and whenever a region is created, mutated or
// deleted. Provider errors are logged by the manager but never fail the
// in-memory operation: the live claim state is authoritative for the session.
type Provider interface {
	// LoadRegions returns the stored records of every region of the world
	// passed.
	LoadRegions(world string) ([]Data, error)
	// SaveRegion stores the record passed, replacing any record with the
	// same id.
	SaveRegion(d Data) error
	// RemoveRegion deletes the record with the id passed. Removing an
	// unknown id is not an error.
	RemoveRegion(id uuid.UUID) error
}

// NopProvider implements Provider and does not store anything. It is the
// default of Config.Provider, used for worlds whose claims should not outlive
// the session.
type NopProvider struct{}

// LoadRegions ...
func (NopProvider) LoadRegions(string) ([]Data, error) { return nil, nil }

// SaveRegion ...
func (NopProvider) SaveRegion(Data) error { return nil }

// RemoveRegion ...
func (NopProvider) RemoveRegion(uuid.UUID) error { return nil }
