//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Runs ducky from the repository root so assets/ resolves.
func (Run) Ducky() error {
	return sh.RunV("go", "run", pkg)
}
