// Command moodmelt explores a CSV of social-media mentions from the terminal:
// filtered aggregate views, CSV export, an optional AI campaign summary and
// an archive of generated reports.
package main

import (
	"os"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
