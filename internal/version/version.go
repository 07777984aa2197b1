// Package version holds version information for the fanout daemon and CLI.
// Both follow semantic versioning and are bumped independently.
package version

// FanoutdVersion is the current fanoutd daemon version.
const FanoutdVersion = "0.3.0"

// FanoutctlVersion is the current fanoutctl CLI version.
const FanoutctlVersion = "0.3.0"
