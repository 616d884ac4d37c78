// Command lagtrack runs the offline Lagrangian particle tracker.
package main

import (
	"fmt"
	"os"

	"github.com/oceanmodel/lagtrack/internal/cli"
)

func main() {
	if err := cli.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
