// Package restore implements the two-phase world restoration workflow used
// to undo griefing after a claim expires. The CPU-heavy phase, scanning a
// copied block column and deciding replacements, runs on background workers;
// the resulting changesets are handed back over a single-consumer queue that
// must be drained on the goroutine owning world mutation, since writing
// blocks back into the live world is not thread-safe.
package restore

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dm-vev/claimguard/guard/cube"
)

// ErrClosed is returned by Submit after the Restorer has been closed.
var ErrClosed = errors.New("restore: restorer closed")

// Snapshot is a copy of the block column of one chunk, taken on the world
// thread before the scan is offloaded. Blocks are stored y-major as runtime
// block ids.
type Snapshot struct {
	// Pos is the chunk the snapshot was taken of.
	Pos cube.ChunkPos
	// Range is the vertical range the snapshot covers.
	Range cube.Range
	// Blocks holds one runtime block id per position, indexed x + z<<4 +
	// (y-Range.Min())<<8. Its length must be 256*(Range.Height()+1), one
	// layer per y value of the range inclusive.
	Blocks []uint32
	// Surface holds the height of the highest obstructing block per column,
	// indexed x + z<<4. Rules use it to tell caves from surface damage.
	Surface [256]int
}

// At returns the block id at the coordinates passed. The x and z coordinates
// are relative to the chunk, y is absolute.
func (s Snapshot) At(x, y, z int) uint32 {
	return s.Blocks[x+z<<4+(y-s.Range.Min())<<8]
}

// Digest returns a hash of the snapshot's block data. The apply phase
// compares it against a fresh digest of the live column to detect that the
// column changed while the scan was in flight.
func (s Snapshot) Digest() uint64 {
	h := xxhash.New()
	var buf [4]byte
	for _, b := range s.Blocks {
		binary.LittleEndian.PutUint32(buf[:], b)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Rule decides the replacement of a single scanned block. Rules are
// consulted in order; the first rule to return true decides.
type Rule interface {
	// Replace returns the block to place at the coordinates passed and
	// whether the rule applies. The coordinates follow the Snapshot.At
	// convention.
	Replace(s Snapshot, x, y, z int, current uint32) (uint32, bool)
}

// Change is a single block replacement decided by the scan phase.
type Change struct {
	Pos   cube.Pos
	Block uint32
}

// Changeset is the result of scanning one snapshot. It is applied on the
// world thread.
type Changeset struct {
	// Pos is the chunk the changeset applies to.
	Pos cube.ChunkPos
	// Digest is the digest of the snapshot the changes were computed from.
	// If the live column no longer hashes to it, the changeset is stale and
	// should be discarded in favour of a fresh scan.
	Digest uint64
	// Changes holds the block replacements to apply.
	Changes []Change
}

// Stale reports if the changeset was computed from an outdated snapshot,
// comparing its digest against that of the current snapshot passed.
func (cs Changeset) Stale(current Snapshot) bool {
	return cs.Digest != current.Digest()
}

// Config holds the options of a Restorer.
type Config struct {
	// Log is the logger used for worker panics. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Workers is the number of scan workers. If 0 or lower, the worker
	// count is derived from the host's available CPUs.
	Workers int
	// QueueSize limits how many scan tasks and finished changesets may wait
	// at a time. If 0 or lower, a size proportional to the worker count is
	// chosen.
	QueueSize int
}

// New creates a Restorer and starts its scan workers.
func (conf Config) New() *Restorer {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Workers <= 0 {
		conf.Workers = max(1, runtime.NumCPU()/2)
	}
	if conf.QueueSize <= 0 {
		conf.QueueSize = conf.Workers * 16
	}
	r := &Restorer{
		log:     conf.Log,
		tasks:   make(chan task, conf.QueueSize),
		results: make(chan Changeset, conf.QueueSize),
		closing: make(chan struct{}),
	}
	for range conf.Workers {
		r.running.Add(1)
		go r.worker()
	}
	return r
}

// Restorer owns the scan workers and the result queue of the restoration
// workflow. Submit may be called from any goroutine; Results must be drained
// on the goroutine owning world mutation.
type Restorer struct {
	log *slog.Logger

	tasks   chan task
	results chan Changeset

	closing chan struct{}
	running sync.WaitGroup
	o       sync.Once
}

type task struct {
	snapshot Snapshot
	rules    []Rule
}

// Submit queues a snapshot for scanning with the rules passed. It blocks
// while the task queue is full and returns ErrClosed once the Restorer has
// been closed.
func (r *Restorer) Submit(s Snapshot, rules []Rule) error {
	// A closed Restorer usually still has queue space, which would make both
	// cases of the blocking select below ready at once, so the closed state
	// has to be checked on its own first.
	select {
	case <-r.closing:
		return ErrClosed
	default:
	}
	select {
	case <-r.closing:
		return ErrClosed
	case r.tasks <- task{snapshot: s, rules: rules}:
		return nil
	}
}

// Results returns the queue of finished changesets. The caller drains it on
// the world thread and applies each changeset, discarding stale ones.
func (r *Restorer) Results() <-chan Changeset {
	return r.results
}

// Close stops the scan workers. Tasks still queued are dropped; changesets
// already produced remain readable from Results.
func (r *Restorer) Close() error {
	r.o.Do(func() {
		close(r.closing)
		r.running.Wait()
		close(r.results)
	})
	return nil
}

// worker continuously scans queued snapshots until the Restorer closes.
func (r *Restorer) worker() {
	defer r.running.Done()
	for {
		select {
		case <-r.closing:
			return
		case t := <-r.tasks:
			cs := r.scan(t)
			if len(cs.Changes) == 0 {
				continue
			}
			select {
			case r.results <- cs:
			case <-r.closing:
				return
			}
		}
	}
}

// scan runs the rules over every cell of the snapshot. A panicking rule is
// recovered so it cannot take the worker down; the changeset produced so far
// is discarded in that case.
func (r *Restorer) scan(t task) (cs Changeset) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("restore scan: rule panic", "chunkX", t.snapshot.Pos.X(), "chunkZ", t.snapshot.Pos.Z(), "error", rec)
			cs = Changeset{Pos: t.snapshot.Pos}
		}
	}()
	s := t.snapshot
	cs = Changeset{Pos: s.Pos, Digest: s.Digest()}
	baseX, baseZ := int(s.Pos.X())<<4, int(s.Pos.Z())<<4
	for y := s.Range.Min(); y <= s.Range.Max(); y++ {
		for z := range 16 {
			for x := range 16 {
				current := s.At(x, y, z)
				for _, rule := range t.rules {
					replacement, ok := rule.Replace(s, x, y, z, current)
					if !ok {
						continue
					}
					if replacement != current {
						cs.Changes = append(cs.Changes, Change{
							Pos:   cube.Pos{baseX + x, y, baseZ + z},
							Block: replacement,
						})
					}
					break
				}
			}
		}
	}
	return cs
}
