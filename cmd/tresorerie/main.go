package main

import (
	"os"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
