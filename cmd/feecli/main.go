package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/thrasher-corp/feeestimator/config"
	"github.com/thrasher-corp/feeestimator/engine"
	"github.com/thrasher-corp/feeestimator/log"
	"github.com/thrasher-corp/feeestimator/signaler"
	"github.com/urfave/cli/v2"
)

var (
	configFile string
	dataDir    string
	verbose    bool
	noColour   bool
	useDB      bool
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "feecli"
	app.Version = "1.0.0"
	app.EnableBashCompletion = true
	app.Usage = "command line interface for marketplace fee and storage fee estimates"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Value:       config.DefaultFilePath(),
			Usage:       "the config file to load",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "datadir",
			Usage:       "overrides the data directory of the config file",
			Destination: &dataDir,
		},
		&cli.StringSliceFlag{
			Name:  "env",
			Value: cli.NewStringSlice(".env"),
			Usage: "KEY=value files loaded into the environment before the config",
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "logs every request and response",
			Destination: &verbose,
		},
		&cli.BoolFlag{
			Name:        "database",
			Usage:       "enables the estimate history database",
			Destination: &useDB,
		},
		&cli.BoolFlag{
			Name:        "nocolour",
			Usage:       "disables coloured output",
			Destination: &noColour,
		},
	}
	app.Before = func(*cli.Context) error {
		if noColour {
			color.NoColor = true
		}
		if !color.NoColor {
			log.SetCustomLogHook(colourLogHook)
		}
		return nil
	}
	app.After = func(*cli.Context) error {
		return log.CloseLogger()
	}
	app.Commands = []*cli.Command{
		feesCommand,
		estimateCommand,
		storageFeeCommand,
		historyCommand,
		serveCommand,
		encryptConfigCommand,
		decryptConfigCommand,
	}
	return app
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Capture cancel for interrupt
		<-signaler.WaitForInterrupt()
		cancel()
		fmt.Fprintln(os.Stderr, "feecli interrupted")
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		os.Exit(1)
	}
}

// newEngine loads the configured engine. The database manager is only
// enabled when requested or required by the command.
func newEngine(c *cli.Context, requireDatabase bool) (*engine.Engine, error) {
	return engine.NewFromSettings(&engine.Settings{
		ConfigFile:            configFile,
		DataDir:               dataDir,
		EnvFiles:              c.StringSlice("env"),
		Verbose:               verbose,
		EnableDatabaseManager: useDB || requireDatabase,
		KeyProvider: func() ([]byte, error) {
			return passwordPrompt("Config password", false)
		},
	})
}
