// Command pitchgraph serves and runs startup pitch assessments.
package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/smallnest/pitchgraph/cmd/pitchgraph/app"
)

func main() {
	if err := app.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
