package channel

import (
	"sort"

	"github.com/Mictronics/pluto-gps-sim/internal/navmsg"
)

// Visible describes one satellite currently above the elevation mask, as
// input to the scheduler.
type Visible struct {
	PRN      int
	Azimuth  float64
	Elev     float64
}

// AllocTable is the transmitter's fixed 12-slot channel table. Allocate
// is idempotent (P7): calling it again with the same visible set makes no
// changes, and a satellite already assigned keeps its slot across calls
// as long as it stays visible, so its carrier and code phase continuity
// is never disturbed by a no-op reschedule.
type AllocTable struct {
	Slots [MaxChannels]*Channel
}

// Allocate reconciles the table against the current visible set. newBuilder
// must produce a fresh navmsg.Builder for a satellite entering a slot
// (the caller owns ephemeris lookup and TOW seeding). Satellites that drop
// out of view free their slot; newly visible satellites are assigned to
// the first idle channel in ascending PRN order, with no elevation
// priority (spec.md §4.5).
func (t *AllocTable) Allocate(visible []Visible, newBuilder func(prn int) *navmsg.Builder) {
	stillVisible := make(map[int]Visible, len(visible))
	for _, v := range visible {
		stillVisible[v.PRN] = v
	}

	assigned := make(map[int]bool, MaxChannels)
	for i, c := range t.Slots {
		if c == nil {
			continue
		}
		if v, ok := stillVisible[c.PRN]; ok {
			c.Az, c.El = v.Azimuth, v.Elev
			assigned[c.PRN] = true
			continue
		}
		t.Slots[i] = nil
	}

	var pending []Visible
	for _, v := range visible {
		if !assigned[v.PRN] {
			pending = append(pending, v)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].PRN < pending[j].PRN })

	for _, v := range pending {
		slot := t.freeSlot()
		if slot < 0 {
			break // full; lowest-priority pending satellites stay unassigned
		}
		c := NewChannel(v.PRN)
		c.Az, c.El = v.Azimuth, v.Elev
		c.Reset(v.PRN, newBuilder(v.PRN))
		t.Slots[slot] = c
	}
}

func (t *AllocTable) freeSlot() int {
	for i, c := range t.Slots {
		if c == nil {
			return i
		}
	}
	return -1
}

// Active returns the non-nil channels currently occupying a slot.
func (t *AllocTable) Active() []*Channel {
	out := make([]*Channel, 0, MaxChannels)
	for _, c := range t.Slots {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
