package main

import (
	"fmt"
	"os"

	"github.com/pokeguess/pokeguess/cmd"
	"github.com/pokeguess/pokeguess/internal/buildinfo"
	"github.com/pokeguess/pokeguess/internal/conf"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = ""
	buildDate = ""
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	info := buildinfo.NewContext(version, buildDate)

	if err := cmd.RootCommand(settings, info).Execute(); err != nil {
		os.Exit(1)
	}
}
