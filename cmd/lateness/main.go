// Package main is the entry point for the lateness CLI tool.
package main

import (
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/cmd"
)

func main() {
	cmd.Execute()
}
