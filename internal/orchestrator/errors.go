// Package orchestrator runs a complete dispatch request.
//
// This file implements the request level error. Only a missing pool fails a
// request; every other failure (unreliable counter reads, rejected or timed
// out calls) is folded into the response. The API maps this error to HTTP
// 500 with the message as the error detail.
package orchestrator

import (
	"errors"
	"fmt"

	"github.com/concave-dev/fanout/internal/credential"
)

// ErrPoolUnavailable matches every *PoolUnavailableError.
var ErrPoolUnavailable = errors.New("credential pool unavailable")

// PoolUnavailableError reports that a group has no usable pool for purpose.
// It is the only error that fails a request.
type PoolUnavailableError struct {
	Group   string
	Purpose credential.Purpose
}

func (e *PoolUnavailableError) Error() string {
	if e.Purpose == credential.Measurement {
		return fmt.Sprintf("no measurement credentials loaded for group %s", e.Group)
	}
	return fmt.Sprintf("no credentials loaded or pool invalid for group %s", e.Group)
}

// Is reports ErrPoolUnavailable as a match.
func (e *PoolUnavailableError) Is(target error) bool {
	return target == ErrPoolUnavailable
}
