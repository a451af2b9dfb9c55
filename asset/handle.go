package asset

import (
	"fmt"

	"github.com/google/uuid"
)

// Handle identifies one asset of a Server. Handles are comparable values and
// safe to store in components.
type Handle struct {
	ID   uuid.UUID
	Path string
}

// IsZero reports whether h was never returned by a Server.
func (h Handle) IsZero() bool {
	return h.ID == uuid.Nil
}

func (h Handle) String() string {
	return fmt.Sprintf("%s (%s)", h.Path, h.ID)
}

// LoadState tracks where an asset is in its load.
type LoadState int

const (
	NotLoaded LoadState = iota
	Pending
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not loaded"
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}
