package main

import (
	"os"

	"github.com/xrsl/job/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
