package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/hotelres/internal/cli"
	"github.com/idilsaglam/hotelres/internal/config"
	"github.com/idilsaglam/hotelres/internal/ui"
)

// rootFlags are accepted before the subcommand.
type rootFlags struct {
	theme   string
	noColor bool
	args    []string
}

// parseRootFlags reads the root flags; env config supplies the defaults.
func parseRootFlags(fs *flag.FlagSet, cfg *config.Config, argv []string) (rootFlags, error) {
	var rf rootFlags
	fs.StringVar(&rf.theme, "theme", cfg.Theme, "color theme: classic, neon or mono")
	fs.BoolVar(&rf.noColor, "no-color", cfg.NoColor || os.Getenv("NO_COLOR") != "", "disable colors")
	if err := fs.Parse(argv); err != nil {
		return rf, err
	}
	rf.args = fs.Args()
	return rf, nil
}

func main() {
	cfg := config.Load()

	rf, err := parseRootFlags(flag.CommandLine, cfg, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	ui.SetTheme(rf.theme)
	ui.SetNoColor(rf.noColor)

	if len(rf.args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	code := cli.Run(context.Background(), rf.args, cli.Options{Config: cfg})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
