// Package main is the flakerun binary.
package main

import "github.com/liuxd6825/flakerun/internal/cmd"

func main() {
	cmd.Execute()
}
