// Package validate provides input validation shared by fanoutd, fanoutctl
// and the HTTP API.
//
// This file implements the common checks used by the config packages. All
// helpers go through the go-playground/validator instance in network.go, so
// rejected values produce consistent error messages.
//
// VALIDATION UTILITIES:
//   - Port validation: standard port range checking (1-65535)
//   - String validation: required, non-empty fields
//   - Timeout validation: strictly positive durations
//   - Range validation: bounded integers such as the batch size
package validate

import (
	"fmt"
	"time"
)

// ValidatePortRange checks that port is in 1-65535. Port 0 is rejected since
// clients need a predictable address.
func ValidatePortRange(port int) error {
	return ValidateField(port, "required,min=1,max=65535")
}

// ValidateRequiredString checks that a named string field is not empty.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidatePositiveTimeout checks that a duration is strictly positive. Zero
// is rejected because every timeout in fanout bounds a blocking call.
func ValidatePositiveTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidateIntRange checks that value is within [lo, hi]. The error names the
// field and echoes the rejected value.
func ValidateIntRange(value, lo, hi int, name string) error {
	if err := ValidateField(value, fmt.Sprintf("min=%d,max=%d", lo, hi)); err != nil {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, lo, hi, value)
	}
	return nil
}
