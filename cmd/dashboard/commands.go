// ====================================
// File: cmd/dashboard/commands.go
// ====================================
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/app"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/config"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/export"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/portfolio"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/ui"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/utils/logger"
)

const logRingSize = 50

// setup загружает конфигурацию, логгер и компоненты. console=false, когда терминал занят TUI.
func setup(c *cli.Context, console bool, ring *logger.Ring) (*app.App, *logger.Logger, error) {
	cfg, err := config.LoadConfig(c.String(flagConfig))
	if err != nil {
		return nil, nil, err
	}
	if c.Bool(flagDebug) {
		cfg.DebugLogging = true
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	logCfg.Console = console
	logCfg.Ring = ring

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a, err := app.New(cfg, log.Logger)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return a, log, nil
}

func serveCmd(c *cli.Context) error {
	a, log, err := setup(c, true, nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	if addr := c.String(flagAddr); addr != "" {
		a.Config.HTTPAddr = addr
	}

	ctx, cancel := a.SignalContext(c.Context)
	defer cancel()

	if err := a.Server().Run(ctx); err != nil {
		log.LogError("HTTP server stopped", err, zap.String("addr", a.Config.HTTPAddr))
		return err
	}
	return nil
}

func trendingCmd(c *cli.Context) error {
	a, log, err := setup(c, false, nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := a.SignalContext(c.Context)
	defer cancel()

	end := log.TrackPerformance("trending")
	res, err := a.Market.Trending(ctx)
	end()
	if err != nil {
		return err
	}

	if format, ok, err := exportFormat(c); err != nil {
		return err
	} else if ok {
		path, err := export.NewExporter(log.Logger, nil).ExportTrending(res, format, c.String(flagOut))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "exported %s\n", path)
	}
	return printJSON(c.App.Writer, res)
}

func pricesCmd(c *cli.Context) error {
	a, log, err := setup(c, false, nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	ids := c.StringSlice(flagIDs)
	if len(market.NormalizeIDs(ids)) == 0 {
		ids = a.Config.WatchIDs
	}

	ctx, cancel := a.SignalContext(c.Context)
	defer cancel()

	end := log.TrackPerformance("prices")
	res, err := a.Market.Prices(ctx, ids)
	end()
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func portfolioCmd(c *cli.Context) error {
	a, log, err := setup(c, false, nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	holdings := a.Holdings
	if file := c.String(flagFile); file != "" {
		holdings, err = portfolio.LoadHoldings(file)
		if err != nil {
			return err
		}
	}
	if len(holdings) == 0 {
		return fmt.Errorf("no holdings: pass --%s or set portfolio_file", flagFile)
	}

	ctx, cancel := a.SignalContext(c.Context)
	defer cancel()

	val, err := a.Valuator.Value(ctx, holdings)
	if err != nil {
		return err
	}

	if format, ok, err := exportFormat(c); err != nil {
		return err
	} else if ok {
		path, err := export.NewExporter(log.Logger, nil).ExportValuation(val, format, c.String(flagOut))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "exported %s\n", path)
	}
	return printJSON(c.App.Writer, val)
}

func watchCmd(c *cli.Context) error {
	ring := logger.NewRing(logRingSize)
	a, log, err := setup(c, false, ring)
	if err != nil {
		return err
	}
	defer log.Sync()

	ids := c.StringSlice(flagIDs)
	if len(market.NormalizeIDs(ids)) == 0 {
		ids = a.Config.WatchIDs
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	watchLog := log.WithComponent("watch")
	watchLog.Info("Starting watch view", zap.Strings("ids", ids))
	return ui.NewRecoveryHandler(watchLog).Run(ctx, func() (tea.Model, []tea.ProgramOption) {
		model := ui.NewModel(ctx, a.Market, ui.Options{
			IDs:      ids,
			Interval: a.Config.RefreshEvery(),
			Logs:     ring,
		})
		return model, []tea.ProgramOption{tea.WithAltScreen()}
	})
}

// exportFormat читает --export; ok=false, если флаг не задан
func exportFormat(c *cli.Context) (export.Format, bool, error) {
	raw := c.String(flagExport)
	if raw == "" {
		return "", false, nil
	}
	f, err := export.ParseFormat(raw)
	if err != nil {
		return "", false, err
	}
	return f, true, nil
}

func printJSON(w io.Writer, v interface{}) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
