// Package main provides the sqliteweb command.
package main

import (
	"os"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
