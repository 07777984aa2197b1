// Package selector picks bounded batches of credentials from a pool.
//
// This package implements the batch selection step of a dispatch request.
// A group's pool can hold thousands of credentials while a single request
// only sends a bounded batch, so the selector decides which slice of the pool
// each request uses.
//
// SELECTION POLICIES:
//   - Rotating: walks the pool with a per-group cursor so consecutive
//     requests use consecutive windows and every credential is used before
//     any is reused
//   - Random: samples the batch uniformly without replacement and leaves the
//     cursor untouched
//
// CURSOR STATE:
// Cursors live in memory only, one per normalized group name, and start at
// zero. They are shared by every request for the group and are lost on
// restart. A single mutex guards the whole cursor map; it is held only for
// the read-modify-write of one cursor and never across network I/O.
//
// Pools no larger than the batch size are always returned whole, in either
// mode, without touching the cursor.
package selector

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/concave-dev/fanout/internal/credential"
)

// DefaultBatchSize is the batch size used when none is configured.
const DefaultBatchSize = 100

// Mode is the batch selection policy.
type Mode int

const (
	// Rotating takes the next window after the group's cursor.
	Rotating Mode = iota

	// Random samples distinct credentials and ignores the cursor.
	Random
)

// String returns the mode name used in requests and responses.
func (m Mode) String() string {
	if m == Random {
		return "random"
	}
	return "rotating"
}

// ParseMode parses a mode name as given on the API or the CLI.
//
// Matching is case-insensitive and ignores surrounding whitespace. The
// boolean strings of the "random" query flag are also understood: "true"
// selects Random, "false" and the empty string select Rotating. Anything
// else is an error so that a typo never silently falls back to a policy.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rotating", "false":
		return Rotating, nil
	case "random", "true":
		return Random, nil
	default:
		return Rotating, fmt.Errorf("unknown selection mode %q: must be rotating or random", s)
	}
}

// Selector owns the per-group rotation cursors and the random source used by
// Random mode.
//
// A Selector is safe for concurrent use. Concurrent rotating requests for
// the same group each receive a distinct window because the cursor is read
// and advanced under one lock hold. The random source is guarded by the same
// mutex since *rand.Rand is not safe for concurrent use.
type Selector struct {
	batchSize int

	mu      sync.Mutex
	cursors map[string]int
	rng     *rand.Rand
}

// New creates a selector with the given maximum batch size. Non-positive
// batch sizes use DefaultBatchSize. The random source is seeded from the
// runtime's global generator.
func New(batchSize int) *Selector {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Selector{
		batchSize: batchSize,
		cursors:   make(map[string]int),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// BatchSize returns the configured maximum batch size.
func (s *Selector) BatchSize() int {
	return s.batchSize
}

// SelectBatch returns the credentials to dispatch with for group.
//
// An empty pool yields an empty batch and is not an error; the caller skips
// the dispatch. Pools no larger than the batch size are returned whole in
// either mode and do not move the cursor.
//
// In rotating mode the returned window starts at the group's cursor and
// wraps to the front of the pool; the cursor then advances by the batch size
// whether or not the dispatch that follows succeeds. With a pool of 250 and a
// batch size of 100 successive cursors are 0, 100, 200, 50, 150 and so on,
// and ceil(250/100) requests cover the whole pool.
//
// The returned slice may alias pool when the pool is returned whole; callers
// must not modify it.
func (s *Selector) SelectBatch(group string, pool []credential.Credential, mode Mode) []credential.Credential {
	n := len(pool)
	if n == 0 {
		return nil
	}
	if n <= s.batchSize {
		return pool
	}

	if mode == Random {
		return s.sample(pool)
	}
	return s.window(credential.NormalizeGroup(group), pool)
}

// window takes the next rotating window for group and advances its cursor.
// The cursor is reduced modulo the current pool length first, so a pool that
// shrank since the last request still yields a valid window.
func (s *Selector) window(group string, pool []credential.Credential) []credential.Credential {
	n := len(pool)

	s.mu.Lock()
	// Pools can shrink between calls
	cursor := s.cursors[group] % n
	s.cursors[group] = (cursor + s.batchSize) % n
	s.mu.Unlock()

	batch := make([]credential.Credential, 0, s.batchSize)
	end := cursor + s.batchSize
	if end <= n {
		return append(batch, pool[cursor:end]...)
	}
	batch = append(batch, pool[cursor:]...)
	return append(batch, pool[:end-n]...)
}

// sample draws batchSize distinct credentials uniformly at random.
func (s *Selector) sample(pool []credential.Credential) []credential.Credential {
	s.mu.Lock()
	idx := s.rng.Perm(len(pool))[:s.batchSize]
	s.mu.Unlock()

	batch := make([]credential.Credential, len(idx))
	for i, j := range idx {
		batch[i] = pool[j]
	}
	return batch
}

// Cursor reports the current rotation cursor of group, zero if the group has
// never rotated.
func (s *Selector) Cursor(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[credential.NormalizeGroup(group)]
}
