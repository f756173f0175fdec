// ====================================
// File: cmd/dashboard/main.go
// ====================================
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
	flagIDs    = "ids"
	flagFile   = "file"
	flagAddr   = "addr"
	flagExport = "export"
	flagOut    = "out"
)

const (
	appName = "dashboard"
	// version задается при сборке по git-тегу
	version = "v0.1.0"
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "Resilient market data dashboard backend"
	app.Version = version
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Configuration `FILE` (yaml, json or toml)",
			EnvVars: []string{"DASHBOARD_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "Enable debug logging",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the HTTP JSON API",
			Action: serveCmd,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagAddr, Usage: "Listen `ADDR`, overrides http_addr"},
			},
		},
		{
			Name:   "trending",
			Usage:  "Print the trending token list once",
			Action: trendingCmd,
			Flags:  exportFlags(),
		},
		{
			Name:   "prices",
			Usage:  "Print quotes for coin ids",
			Action: pricesCmd,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: flagIDs, Usage: "Coin `IDS`, comma separated"},
			},
		},
		{
			Name:   "portfolio",
			Usage:  "Value a holdings file",
			Action: portfolioCmd,
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: flagFile, Aliases: []string{"f"}, Usage: "Holdings JSON `FILE`, overrides portfolio_file"},
			}, exportFlags()...),
		},
		{
			Name:   "watch",
			Usage:  "Live terminal view",
			Action: watchCmd,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: flagIDs, Usage: "Coin `IDS` to quote, comma separated"},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		os.Exit(1)
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagExport, Usage: "Also write the result to a file, `FORMAT` csv or json"},
		&cli.StringFlag{Name: flagOut, Value: ".", Usage: "Output `DIR` for --export"},
	}
}
