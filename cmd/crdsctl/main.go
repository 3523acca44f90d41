// Command crdsctl is a small debug CLI around a standalone CrdsTable,
// a single-binary, cobra-driven entry point in the same style as
// cmd/headers and cmd/rpcdaemon.
package main

import (
	"os"

	"github.com/ledgerwatch/crds/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
