// Package credential models bearer credential pools and the providers that
// load them.
//
// A pool is an ordered list of credentials scoped to a group (for example a
// region) and a purpose. Dispatch pools are large and fanned out across; the
// measurement pool only needs one credential, used for read-only counter
// lookups before and after a dispatch.
//
// Providers never fail: absent, unreadable or malformed data is reported as an
// empty pool and logged, so that callers treat absence uniformly.
package credential

import (
	"context"
	"fmt"
	"strings"
)

// Purpose selects which pool of a group is loaded.
type Purpose int

const (
	// Dispatch pools supply the credentials an action is fanned out across
	Dispatch Purpose = iota
	// Measurement pools supply the fixed credential used for counter reads
	Measurement
)

// String returns the purpose name used in file names, Redis keys and logs.
func (p Purpose) String() string {
	switch p {
	case Dispatch:
		return "dispatch"
	case Measurement:
		return "measure"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

// Credential is one bearer token plus the metadata stored alongside it.
// Values are immutable once loaded; callers only borrow them for a call.
type Credential struct {
	Token     string `json:"token"`
	AccountID string `json:"uid,omitempty"`
	Label     string `json:"label,omitempty"`
}

// Valid reports whether the credential carries a usable token.
func (c Credential) Valid() bool {
	return strings.TrimSpace(c.Token) != ""
}

// Provider supplies the current pool for a group and purpose. It must
// return an empty slice, never an error, when no data is available.
type Provider interface {
	LoadPool(ctx context.Context, group string, purpose Purpose) []Credential
}

// NormalizeGroup trims and upper-cases a group identifier so that "br",
// " BR " and "BR" share one pool and one rotation cursor.
func NormalizeGroup(group string) string {
	return strings.ToUpper(strings.TrimSpace(group))
}
