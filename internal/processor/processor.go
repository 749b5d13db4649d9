// Package processor simulates the external payment processors that
// transaction recovery queries for the true outcome of a timed-out payment.
package processor

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/vidarx/recovery/internal/config"
	"github.com/vidarx/recovery/internal/models"
)

// Adapter is the capability the recovery engine depends on: query a
// processor for the current state of a transaction. Implementations may
// take arbitrary time and occasionally fail.
type Adapter interface {
	Name() string
	QueryTransaction(ctx context.Context, transactionID string,
		groundTruth models.CanonicalState) (map[string]any, error)
}

// Error signals a transient upstream failure from a processor
type Error struct {
	Processor string
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Processor, e.Message)
}

// Registry maps processor names to their adapters. It is built once at
// startup and passed to the recovery service; tests substitute adapters by
// constructing their own registry.
type Registry map[string]Adapter

// Lookup returns the adapter registered under name
func (r Registry) Lookup(name string) (Adapter, bool) {
	a, ok := r[name]
	return a, ok
}

// Descriptor captures everything that distinguishes one processor's wire
// behavior: field names, status vocabulary, timestamp encoding, and the
// extra payload fields it decorates responses with.
type Descriptor struct {
	Name           string
	IDField        string
	StatusField    string
	TimestampField string
	FailureMessage string
	// Vocabulary maps a canonical state to this processor's raw status word
	Vocabulary map[models.CanonicalState]string
	// FormatTimestamp renders now into the processor's timestamp encoding
	FormatTimestamp func(now time.Time) any
	// Decorate adds processor-specific fields to the raw response
	Decorate func(raw map[string]any, rawStatus string)
}

// Simulator is a data-driven mock of one payment processor. Latency jitter
// and the synthetic failure rate come from configuration so tests can turn
// them off.
type Simulator struct {
	desc Descriptor
	cfg  config.SimulatorConfig
}

// NewSimulator creates a Simulator for the given descriptor
func NewSimulator(desc Descriptor, cfg config.SimulatorConfig) *Simulator {
	return &Simulator{desc: desc, cfg: cfg}
}

// Name returns the processor name this simulator answers for
func (s *Simulator) Name() string {
	return s.desc.Name
}

// QueryTransaction simulates querying the processor for a transaction's
// state. The ground-truth state decides what the processor will report.
func (s *Simulator) QueryTransaction(ctx context.Context, transactionID string,
	groundTruth models.CanonicalState) (map[string]any, error) {
	if err := sleepJitter(ctx, s.cfg.MinLatencyMS, s.cfg.MaxLatencyMS); err != nil {
		return nil, err
	}

	if shouldFail(s.cfg.FailureRate) {
		return nil, &Error{Processor: s.desc.Name, Message: s.desc.FailureMessage}
	}

	rawStatus, ok := s.desc.Vocabulary[groundTruth]
	if !ok {
		rawStatus = s.desc.Vocabulary[models.StateUnknown]
	}

	raw := map[string]any{
		s.desc.IDField:        transactionID,
		s.desc.StatusField:    rawStatus,
		s.desc.TimestampField: s.desc.FormatTimestamp(time.Now()),
	}
	if s.desc.Decorate != nil {
		s.desc.Decorate(raw, rawStatus)
	}

	return raw, nil
}

// sleepJitter blocks for a random duration inside the configured latency
// band, or until the context is canceled.
func sleepJitter(ctx context.Context, minMS, maxMS int) error {
	if minMS <= 0 && maxMS <= 0 {
		return ctx.Err()
	}

	sleepMS := minMS
	if rangeMS := maxMS - minMS; rangeMS > 0 {
		randomOffset, err := rand.Int(rand.Reader, big.NewInt(int64(rangeMS)))
		if err == nil {
			sleepMS = minMS + int(randomOffset.Int64())
		}
	}

	timer := time.NewTimer(time.Duration(sleepMS) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shouldFail(failureRate float64) bool {
	if failureRate <= 0 {
		return false
	}
	if failureRate >= 1 {
		return true
	}

	const precision = 1000000
	randomNum, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		return false
	}

	threshold := int64(failureRate * precision)
	return randomNum.Int64() < threshold
}

// randomInt returns a random integer in [low, high]
func randomInt(low, high int) int {
	if high <= low {
		return low
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(high-low+1)))
	if err != nil {
		return low
	}
	return low + int(n.Int64())
}
