//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Report builds the CLI and writes the report for date (YYYY-MM-DD) to the
// default output path.
func Report(date string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "report", "--date", date, "--verbose")
}

// Ask builds the CLI and starts the interactive question loop.
func Ask() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "ask")
}
