//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the testbed binary into bin/.
func (Build) Testbed() error {
	if err := goTidy(); err != nil {
		return err
	}
	return runCmd(true, "go", "build", "-o", "bin/hdrp-testbed", ".")
}

// Runs go vet over every package.
func (Build) Vet() error {
	return runCmd(true, "go", "vet", "./...")
}

// Runs the test suite with the race detector.
func (Build) Test() error {
	return runCmd(true, "go", "test", "-race", "-count=1", "./...")
}
