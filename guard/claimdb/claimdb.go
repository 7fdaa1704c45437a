// Package claimdb implements a LevelDB backed provider for claim regions and
// claim block ledgers. Records are stored as JSON values behind stable key
// prefixes, one record per region id and one per (world, player) ledger
// entry, so that a region round-trips across restarts under the same id.
package claimdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/util"
	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/ledger"
	"github.com/google/uuid"
)

const (
	keyRegionPrefix = "claim/"
	keyLedgerPrefix = "ledger/"
)

// Config holds the options of a DB.
type Config struct {
	// Log is the logger used for non-fatal storage anomalies, such as
	// records that fail to decode. If nil, Log is set to slog.Default().
	Log *slog.Logger
}

// Open opens a claim database in the directory passed, creating it if it
// does not yet exist.
func (conf Config) Open(dir string) (*DB, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	ldb, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open claim db: %w", err)
	}
	return &DB{conf: conf, ldb: ldb}, nil
}

// Open opens a claim database in the directory passed using default options.
func Open(dir string) (*DB, error) {
	return Config{}.Open(dir)
}

// DB is a LevelDB backed store of region and ledger records. It implements
// claim.Provider; per-world ledger.Providers are derived from it through
// LedgerProvider.
type DB struct {
	conf Config
	ldb  *leveldb.DB
}

// LoadRegions returns the stored records of every region of the world
// passed. Records that fail to decode are skipped and logged: a single
// corrupt record must not take the rest of the world's claims with it.
func (db *DB) LoadRegions(world string) ([]claim.Data, error) {
	var out []claim.Data
	it := db.ldb.NewIterator(util.BytesPrefix([]byte(keyRegionPrefix)), nil)
	defer it.Release()
	for it.Next() {
		var d claim.Data
		if err := json.Unmarshal(it.Value(), &d); err != nil {
			db.conf.Log.Error("decode region record: "+err.Error(), "key", string(it.Key()))
			continue
		}
		if d.World != world {
			continue
		}
		out = append(out, d)
	}
	if err := it.Error(); err != nil {
		return out, fmt.Errorf("iterate region records: %w", err)
	}
	return out, nil
}

// SaveRegion stores the record passed under its region id.
func (db *DB) SaveRegion(d claim.Data) error {
	v, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode region record: %w", err)
	}
	if err := db.ldb.Put(regionKey(d.ID), v, nil); err != nil {
		return fmt.Errorf("store region record: %w", err)
	}
	return nil
}

// RemoveRegion deletes the record with the id passed. Removing an unknown id
// is a no-op.
func (db *DB) RemoveRegion(id uuid.UUID) error {
	if err := db.ldb.Delete(regionKey(id), nil); err != nil {
		return fmt.Errorf("delete region record: %w", err)
	}
	return nil
}

// LoadLedger returns the stored ledger entry of the actor in the world
// passed. The bool returned is false if no entry exists yet.
func (db *DB) LoadLedger(world string, actor uuid.UUID) (ledger.Data, bool, error) {
	v, err := db.ldb.Get(ledgerKey(world, actor), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return ledger.Data{}, false, nil
	} else if err != nil {
		return ledger.Data{}, false, fmt.Errorf("load ledger record: %w", err)
	}
	var d ledger.Data
	if err := json.Unmarshal(v, &d); err != nil {
		return ledger.Data{}, false, fmt.Errorf("decode ledger record: %w", err)
	}
	return d, true, nil
}

// SaveLedger stores the ledger entry of the actor in the world passed.
func (db *DB) SaveLedger(world string, actor uuid.UUID, d ledger.Data) error {
	v, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode ledger record: %w", err)
	}
	if err := db.ldb.Put(ledgerKey(world, actor), v, nil); err != nil {
		return fmt.Errorf("store ledger record: %w", err)
	}
	return nil
}

// LedgerProvider returns a ledger.Provider scoped to the world passed.
func (db *DB) LedgerProvider(world string) ledger.Provider {
	return ledgerProvider{db: db, world: world}
}

// Close flushes and closes the underlying database.
func (db *DB) Close() error {
	return db.ldb.Close()
}

type ledgerProvider struct {
	db    *DB
	world string
}

// LoadLedger ...
func (p ledgerProvider) LoadLedger(actor uuid.UUID) (ledger.Data, bool, error) {
	return p.db.LoadLedger(p.world, actor)
}

// SaveLedger ...
func (p ledgerProvider) SaveLedger(actor uuid.UUID, d ledger.Data) error {
	return p.db.SaveLedger(p.world, actor, d)
}

func regionKey(id uuid.UUID) []byte {
	return []byte(keyRegionPrefix + id.String())
}

func ledgerKey(world string, actor uuid.UUID) []byte {
	return []byte(keyLedgerPrefix + world + "/" + actor.String())
}
