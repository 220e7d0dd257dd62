// Package main is the entry point for the worktreectl CLI tool.
package main

import (
	"os"

	"github.com/worktreekit/worktree/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
