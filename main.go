package main

import (
	"os"

	"github.com/temirov/gitcheck/cmd/cli"
)

func main() {
	os.Exit(cli.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
