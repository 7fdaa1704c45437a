package permission

import (
	"log/slog"

	"github.com/brentp/intintmap"
	"github.com/google/uuid"
	"github.com/segmentio/fasthash/fnv1a"
)

// denyLog writes an audit entry for every denied event. High-frequency event
// kinds fire every tick, so their entries are throttled to one per claim,
// permission and time window; the throttle key is a 64-bit hash kept in an
// integer map to avoid growing a string-keyed map on the hot path.
type denyLog struct {
	log    *slog.Logger
	window int64
	seen   *intintmap.Map
}

func newDenyLog(log *slog.Logger, window int64) *denyLog {
	return &denyLog{log: log, window: window, seen: intintmap.New(256, 0.6)}
}

// record logs the denial of an event, naming the acting entity, the
// permission string that matched and the claim it matched in.
func (d *denyLog) record(ev Event, permission string, tier string) {
	if ev.Kind.HighFrequency {
		key := int64(fnv1a.HashString64(ev.Region.ID().String() + "|" + permission))
		if last, ok := d.seen.Get(key); ok && ev.Tick-last < d.window {
			return
		}
		d.seen.Put(key, ev.Tick)
	}
	actor := "none"
	if ev.Actor != uuid.Nil {
		actor = ev.Actor.String()
	}
	d.log.Info("Denied claim action.", "actor", actor, "permission", permission, "claim", ev.Region.ID(), "tier", tier)
}
