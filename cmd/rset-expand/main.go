// Command rset-expand prints the occurrences of a recurrence set.
package main

import (
	"flag"
	"os"

	"github.com/cyp0633/librecur/internal/platform/config"
	"github.com/cyp0633/librecur/internal/tools/expand"
)

func main() {
	cfg, err := expand.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := expand.Run(cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		config.Exitf("expand: %v", err)
	}
}
