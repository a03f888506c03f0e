// Package main provides the r4sync CLI application. r4sync migrates
// and reconciles a legacy R4 practice-management database into a
// PostgreSQL destination store.
package main

import (
	"os"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
