// Package utils contains startup helpers for the fanout daemon.
package utils

import (
	"fmt"
)

// DisplayLogo prints the fanout banner with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(` ░░░░░░░░░░░░░░░░░░░░░░░░░░░░
 ░█▀▀░█▀█░█▀█░█▀█░█░█░▀█▀░░
 ░█▀▀░█▀█░█░█░█░█░█░█░░█░░░
 ░▀░░░▀░▀░▀░▀░▀▀▀░▀▀▀░░▀░░░
 ░░░░░░░░░░░░░░░░░░░░░░░░░░░░`)
	fmt.Printf("\n fanout v%s - credential-batch dispatch\n", version)
	fmt.Println()
}
