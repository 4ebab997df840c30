//go:build !tinygo

package main

import (
	"os"

	"tickos/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
