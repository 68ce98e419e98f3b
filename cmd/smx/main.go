// Package main is the entry point for the smx CLI tool.
package main

import (
	"github.com/sociometrix/smx/internal/cmd"
)

func main() {
	cmd.Execute()
}
