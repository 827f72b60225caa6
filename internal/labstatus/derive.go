// Package labstatus derives the human-facing manufacturing status of a set
// from its batches. These are pure functions recomputed on every read; the
// result is never persisted, so batch mutations can't leave a stale status
// behind.
package labstatus

import (
	"aligner-lab/internal/domain"
)

type Status string

const (
	StatusNoBatches    Status = "no_batches"
	StatusNeedsMfg     Status = "needs_mfg"
	StatusInLab        Status = "in_lab"
	StatusAllDelivered Status = "all_delivered"
)

// Derive reports where the most recent batch of a set sits in the
// manufacture/delivery pipeline.
func Derive(batches []domain.Batch) Status {
	latest := highestSequence(batches)
	if latest == nil {
		return StatusNoBatches
	}

	if !latest.Manufactured() {
		return StatusNeedsMfg
	}
	if !latest.Delivered() {
		return StatusInLab
	}
	return StatusAllDelivered
}

// NextBatchReady reports whether the batch following the most recently
// delivered one is already manufactured and sitting in the lab. A set with no
// delivered batch yet is never "waiting" for its next batch.
func NextBatchReady(batches []domain.Batch) bool {
	current := lastDelivered(batches)
	if current == nil {
		return false
	}

	for i := range batches {
		b := &batches[i]
		if b.Sequence == current.Sequence+1 && b.Manufactured() {
			return true
		}
	}
	return false
}

// IsFinal reports whether the batch closes out its set. This is the staff-set
// flag, not a count comparison: total aligners don't have to divide evenly
// across batches.
func IsFinal(b *domain.Batch) bool {
	return b.IsLast
}

func highestSequence(batches []domain.Batch) *domain.Batch {
	var latest *domain.Batch
	for i := range batches {
		if latest == nil || batches[i].Sequence > latest.Sequence {
			latest = &batches[i]
		}
	}
	return latest
}

func lastDelivered(batches []domain.Batch) *domain.Batch {
	var current *domain.Batch
	for i := range batches {
		b := &batches[i]
		if !b.Delivered() {
			continue
		}
		if current == nil || b.Sequence > current.Sequence {
			current = b
		}
	}
	return current
}
