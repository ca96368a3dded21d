package selection

import "github.com/mmcdole/flightdeck/internal/domain"

type changeSet uint8

const (
	changedSelected changeSet = 1 << iota
	changedSaved
)

// Action is a state transition accepted by Store.Dispatch
type Action interface {
	reduce(Snapshot) (Snapshot, changeSet)
}

// Toggle removes Flight from the basket if present, otherwise appends it
// and evicts the oldest member past capacity.
type Toggle struct {
	Flight domain.FlightOffer
}

func (a Toggle) reduce(s Snapshot) (Snapshot, changeSet) {
	next := make([]domain.FlightOffer, 0, MaxSelected+1)
	removed := false
	for _, f := range s.Selected {
		if f.ID == a.Flight.ID {
			removed = true
			continue
		}
		next = append(next, f)
	}
	if !removed {
		next = append(next, a.Flight)
		if len(next) > MaxSelected {
			next = next[len(next)-MaxSelected:]
		}
	}
	s.Selected = next
	return s, changedSelected
}

// ClearSelection empties the basket
type ClearSelection struct{}

func (ClearSelection) reduce(s Snapshot) (Snapshot, changeSet) {
	s.Selected = nil
	return s, changedSelected
}

// Save appends Flight to the saved list; an existing ID is a no-op
type Save struct {
	Flight domain.FlightOffer
}

func (a Save) reduce(s Snapshot) (Snapshot, changeSet) {
	if domain.ContainsFlight(s.Saved, a.Flight.ID) {
		return s, 0
	}
	next := make([]domain.FlightOffer, 0, len(s.Saved)+1)
	next = append(next, s.Saved...)
	s.Saved = append(next, a.Flight)
	return s, changedSaved
}

// RemoveSaved drops the saved flight with ID
type RemoveSaved struct {
	ID string
}

func (a RemoveSaved) reduce(s Snapshot) (Snapshot, changeSet) {
	next := make([]domain.FlightOffer, 0, len(s.Saved))
	for _, f := range s.Saved {
		if f.ID != a.ID {
			next = append(next, f)
		}
	}
	s.Saved = next
	return s, changedSaved
}
