package main

import (
	"os"

	"github.com/nimasrn/trader-ledger/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
