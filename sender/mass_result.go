package sender

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is the classification of one mass-send target.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeBlocked Outcome = "blocked"
	OutcomeFailed  Outcome = "failed"
)

// MassSendResult tallies the outcome of every target of one batch. Lists
// hold destinations in completion order. It is safe for concurrent use.
type MassSendResult struct {
	// BatchID identifies the batch in logs.
	BatchID string
	// Duration is the wall time of the whole batch.
	Duration time.Duration

	mu      sync.Mutex
	sent    []string
	blocked []string
	failed  []string
}

func newMassSendResult() *MassSendResult {
	return &MassSendResult{BatchID: uuid.NewString()}
}

func (r *MassSendResult) record(chatID string, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch outcome {
	case OutcomeSent:
		r.sent = append(r.sent, chatID)
	case OutcomeBlocked:
		r.blocked = append(r.blocked, chatID)
	default:
		r.failed = append(r.failed, chatID)
	}
}

// Sent returns the destinations that received their message.
func (r *MassSendResult) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.sent)
}

// Blocked returns the destinations rejected with code 400 or 403.
func (r *MassSendResult) Blocked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.blocked)
}

// Failed returns the destinations that failed for any other reason.
func (r *MassSendResult) Failed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failed)
}

func (r *MassSendResult) SentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *MassSendResult) BlockedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blocked)
}

func (r *MassSendResult) FailedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failed)
}

// TotalProcessed returns the number of recorded targets.
func (r *MassSendResult) TotalProcessed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent) + len(r.blocked) + len(r.failed)
}

// IsAllSuccess reports whether nothing was blocked or failed.
func (r *MassSendResult) IsAllSuccess() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blocked) == 0 && len(r.failed) == 0
}

// SuccessRate returns the share of sent targets as a percentage rounded to
// two decimals, or 0 for an empty result.
func (r *MassSendResult) SuccessRate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := len(r.sent) + len(r.blocked) + len(r.failed)
	if total == 0 {
		return 0
	}
	return math.Round(float64(len(r.sent))/float64(total)*100*100) / 100
}

// String returns a one-line summary.
func (r *MassSendResult) String() string {
	return fmt.Sprintf("batch %s: sent=%d blocked=%d failed=%d rate=%.2f%% in %s",
		r.BatchID, r.SentCount(), r.BlockedCount(), r.FailedCount(), r.SuccessRate(), r.Duration)
}
