package main

import (
	"os"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/cmd/hada/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
