package main

import (
	"os"

	"ztools/cmd/zt/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
