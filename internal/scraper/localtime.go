package scraper

import "time"

// resolution describes how a wall-clock reading maps onto instants in a location
type resolution int

const (
	resolvedSingle resolution = iota
	// wall clock falls in a spring-forward gap
	resolvedNone
	// wall clock repeats during a fall-back overlap
	resolvedAmbiguous
)

// resolveLocal finds the instant at which the wall clock in loc reads the given
// date and time. Only a unique match is usable; gaps and overlaps around clock
// changes report resolvedNone or resolvedAmbiguous.
func resolveLocal(date time.Time, hour, minute int, loc *time.Location) (time.Time, resolution) {
	y, mo, d := date.Date()
	wall := time.Date(y, mo, d, hour, minute, 0, 0, time.UTC)
	probe := time.Date(y, mo, d, hour, minute, 0, 0, loc)

	// Zone transitions are never closer than a day apart, so the offsets in
	// effect half a day either side cover every candidate.
	offsets := make(map[int]struct{}, 2)
	for _, t := range []time.Time{probe.Add(-12 * time.Hour), probe, probe.Add(12 * time.Hour)} {
		_, off := t.Zone()
		offsets[off] = struct{}{}
	}

	var matches []time.Time
	for off := range offsets {
		candidate := wall.Add(-time.Duration(off) * time.Second)
		local := candidate.In(loc)
		if _, o := local.Zone(); o != off {
			continue
		}
		if sameWallClock(local, wall) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return time.Time{}, resolvedNone
	case 1:
		return matches[0].UTC(), resolvedSingle
	default:
		return time.Time{}, resolvedAmbiguous
	}
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd && a.Hour() == b.Hour() && a.Minute() == b.Minute()
}
