package gamemode

import (
	"slices"

	"github.com/argus-labs/arena/pkg/physics"
)

// TagRecord attributes contact with a victim to an attacking player for a limited time.
type TagRecord struct {
	Attacker  string
	Remaining float64
}

// TagTracker keeps at most one live record per (victim, attacker). Every record starts with
// the same duration and ticks down uniformly, so each victim's slice is ordered by expiry.
type TagTracker struct {
	duration float64
	tags     map[physics.EntityID][]TagRecord
}

func NewTagTracker(duration float64) *TagTracker {
	return &TagTracker{
		duration: duration,
		tags:     make(map[physics.EntityID][]TagRecord),
	}
}

// Tag records or refreshes attacker's tag on victim. The refreshed record moves to the back.
func (t *TagTracker) Tag(victim physics.EntityID, attacker string) {
	records := slices.DeleteFunc(t.tags[victim], func(r TagRecord) bool { return r.Attacker == attacker })
	t.tags[victim] = append(records, TagRecord{Attacker: attacker, Remaining: t.duration})
}

// Update ages every record by dt and trims expired ones from the front.
func (t *TagTracker) Update(dt float64) {
	for victim, records := range t.tags {
		expired := 0
		for expired < len(records) && records[expired].Remaining-dt <= 0 {
			expired++
		}
		records = records[expired:]
		for i := range records {
			records[i].Remaining -= dt
		}
		if len(records) == 0 {
			delete(t.tags, victim)
			continue
		}
		t.tags[victim] = records
	}
}

// Attackers returns the players holding a live tag on victim, oldest first.
func (t *TagTracker) Attackers(victim physics.EntityID) []string {
	records := t.tags[victim]
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Attacker)
	}
	return out
}

func (t *TagTracker) Records(victim physics.EntityID) []TagRecord {
	return slices.Clone(t.tags[victim])
}

func (t *TagTracker) Forget(victim physics.EntityID) {
	delete(t.tags, victim)
}

func (t *TagTracker) Reset() {
	clear(t.tags)
}
