// Package main is the single-binary entrypoint for the ai command line.
package main

import "github.com/Azure/azure-ai-cli-sub003/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
