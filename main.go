package main

import (
	"os"

	"github.com/spigell/sponsorpath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
