package app

import (
	"time"

	"github.com/okian/finno/internal/domain/cohort"
	"github.com/okian/finno/internal/domain/features"
	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/scoring"
)

// Snapshot is one complete training result. It is never modified after it
// is published, so readers need no locking.
type Snapshot struct {
	// Version is the ledger store version the snapshot was trained on.
	Version   uint64
	TrainedAt time.Time

	Users   []string
	Vectors []features.Vector

	Scorer     *scoring.Model
	Forecaster *forecast.Model
	Cohorts    cohort.Assignment

	index map[string]int
}

func newSnapshot(version uint64, users []string, vectors []features.Vector) *Snapshot {
	index := make(map[string]int, len(users))
	for i, id := range users {
		index[id] = i
	}
	return &Snapshot{
		Version: version,
		Users:   users,
		Vectors: vectors,
		index:   index,
	}
}

// IndexOf returns the user's row in Users and Vectors.
func (s *Snapshot) IndexOf(userID string) (int, bool) {
	i, ok := s.index[userID]
	return i, ok
}
