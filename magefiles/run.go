//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the testbed scene headless for a few frames.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	return runCmd(true, "go", "run", ".", "-frames", "120")
}

// Renders one frame and writes the light count heatmap to heatmap.png.
// An empty settings path uses the defaults.
func (Run) Heatmap(settings string) error {
	mg.Deps(Build.Testbed)
	args := []string{"-frames", "1", "-heatmap", "heatmap.png"}
	if settings != "" {
		args = append(args, "-settings", settings)
	}
	return runCmd(true, "bin/hdrp-testbed", args...)
}
