package schedule

// FindOverlap returns the first slot among existing whose time interval
// intersects the proposed slot's, or nil when the proposed interval is free.
// Callers supply the slots already scheduled for the same hall and date;
// slots for other halls or dates never conflict and are skipped defensively.
//
// Intervals are half-open [start, end): two slots overlap when each starts
// before the other ends.  Exact adjacency (one ending at the minute the
// other starts) is not a conflict, so back-to-back sessions in the same
// hall are allowed.  Any overlap is a hard reject; which conflicting slot
// is returned when several overlap is unspecified.
func FindOverlap(proposed Slot, existing []Slot) *Slot {
    for i := range existing {
        e := &existing[i]
        if e.ID != 0 && e.ID == proposed.ID {
            continue // a slot never conflicts with itself during updates
        }
        if e.HallNumber != proposed.HallNumber || !e.Date.Equal(proposed.Date) {
            continue
        }
        if proposed.StartMin < e.EndMin && e.StartMin < proposed.EndMin {
            return e
        }
    }
    return nil
}
