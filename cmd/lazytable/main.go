package main

import (
	"os"

	"github.com/rebeliceyang/lazytable/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
