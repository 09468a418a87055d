package main

import (
	"os"

	"github.com/OFFIS-RIT/migrascope/cmd/assess/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
