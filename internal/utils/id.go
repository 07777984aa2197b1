// Package utils provides small helpers shared by the fanout packages.
//
// This file implements request id generation. Every dispatch request gets
// an id that prefixes its log lines, tags its trace span and is returned to
// the caller as "request_id", so one request can be followed from the CLI
// output to the daemon logs.
//
// ID FORMAT:
// 12 lower-case hex characters from 6 bytes of crypto/rand output, for
// example "a1b2c3d4e5f6". Ids are not persisted and only need to be unique
// among requests that are close in time.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateID returns a 12-character hex identifier, used to correlate the
// log lines, trace span and response of one dispatch request.
func GenerateID() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
