package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type GlobalOptions struct {
	Config string `short:"c" long:"config" env:"CONFIG_PATH" description:"path to the YAML configuration file"`
}

var globalOptions GlobalOptions

var parser = flags.NewParser(&globalOptions, flags.Default)

func main() {
	// go-flags prints parse and command errors itself
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
