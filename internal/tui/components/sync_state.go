package components

import "github.com/mmcdole/marquee/internal/domain"

// CategoryStatus is the display status of a category
type CategoryStatus int

const (
	StatusIdle CategoryStatus = iota
	StatusLoading
	StatusLoaded
	StatusError
)

// CategoryState is what the sidebar shows for one category
type CategoryState struct {
	Status CategoryStatus
	Count  int   // Items currently held, possibly stale
	Stale  bool  // Items are from an earlier refresh or the cache
	Error  error // Last error, if any
}

// StateFromSlot derives the display state from a store slot
func StateFromSlot(slot domain.CategorySlot) CategoryState {
	st := CategoryState{Count: len(slot.Items), Error: slot.LastError}
	switch {
	case slot.IsLoading:
		st.Status = StatusLoading
		st.Stale = slot.HasItems()
	case slot.LastError != nil:
		st.Status = StatusError
		st.Stale = slot.HasItems()
	case slot.HasItems() || !slot.UpdatedAt.IsZero():
		st.Status = StatusLoaded
	default:
		st.Status = StatusIdle
	}
	return st
}
