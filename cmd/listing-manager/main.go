// Package main is the entry point for listing-manager.
package main

import (
	"os"

	"github.com/donaldgifford/listing-manager/cmd/listing-manager/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
