package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/thrasher-corp/feeestimator/config"
	"github.com/thrasher-corp/feeestimator/database/repository/estimate"
	"github.com/thrasher-corp/feeestimator/engine"
	"github.com/thrasher-corp/feeestimator/marketplace/storagefee"
	"github.com/thrasher-corp/feeestimator/signaler"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/currency"
)

var errMissingArgument = errors.New("missing argument")

var dimensionFlags = []cli.Flag{
	&cli.Float64Flag{
		Name:  "height",
		Usage: "the package height in centimetres",
	},
	&cli.Float64Flag{
		Name:  "length",
		Usage: "the package length in centimetres",
	},
	&cli.Float64Flag{
		Name:  "width",
		Usage: "the package width in centimetres",
	},
}

var itemFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "asin",
		Aliases: []string{"a"},
		Usage:   "the ASIN to estimate fees for",
	},
	&cli.StringFlag{
		Name:    "price",
		Aliases: []string{"p"},
		Usage:   "the listing price in JPY",
	},
}

var feesCommand = &cli.Command{
	Name:      "fees",
	Usage:     "returns the total FBA fee of an ASIN listed at a JPY price",
	ArgsUsage: "<asin> <price>",
	Flags:     append(append([]cli.Flag{}, itemFlags...), dimensionFlags...),
	Action:    getFees,
}

var estimateCommand = &cli.Command{
	Name:      "estimate",
	Usage:     "returns the full fee estimate of an ASIN listed at a JPY price",
	ArgsUsage: "<asin> <price>",
	Flags:     itemFlags,
	Action:    getFeesEstimate,
}

var storageFeeCommand = &cli.Command{
	Name:   "storagefee",
	Usage:  "returns the monthly storage fee of a package",
	Flags:  dimensionFlags,
	Action: getStorageFee,
}

var historyCommand = &cli.Command{
	Name:      "history",
	Usage:     "returns the stored fee estimates of an ASIN, newest first",
	ArgsUsage: "<asin>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "asin",
			Aliases: []string{"a"},
			Usage:   "the ASIN to list estimates for",
		},
		&cli.IntFlag{
			Name:  "limit",
			Value: 50,
			Usage: "the maximum number of estimates returned",
		},
	},
	Action: getHistory,
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "serves the fee estimate REST API until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "overrides the API server listen address",
		},
	},
	Action: serve,
}

var encryptConfigCommand = &cli.Command{
	Name:   "encryptconfig",
	Usage:  "encrypts the config file with a password",
	Action: encryptConfig,
}

var decryptConfigCommand = &cli.Command{
	Name:   "decryptconfig",
	Usage:  "decrypts the config file",
	Action: decryptConfig,
}

// argOrFlag returns the named flag value, falling back to the positional
// argument at index
func argOrFlag(c *cli.Context, name string, index int) (string, error) {
	if c.IsSet(name) {
		return c.String(name), nil
	}
	if c.Args().Len() > index {
		return c.Args().Get(index), nil
	}
	return "", fmt.Errorf("%w: %s", errMissingArgument, name)
}

func itemFromContext(c *cli.Context) (asin, price string, err error) {
	if asin, err = argOrFlag(c, "asin", 0); err != nil {
		return "", "", err
	}
	if price, err = argOrFlag(c, "price", 1); err != nil {
		return "", "", err
	}
	return asin, price, nil
}

func dimensionsFromContext(c *cli.Context) storagefee.Dimensions {
	return storagefee.Dimensions{
		Height: c.Float64("height"),
		Length: c.Float64("length"),
		Width:  c.Float64("width"),
	}
}

func getFees(c *cli.Context) error {
	asin, price, err := itemFromContext(c)
	if err != nil {
		return err
	}
	e, err := newEngine(c, false)
	if err != nil {
		return err
	}
	if err := e.Start(c.Context); err != nil {
		return err
	}
	defer e.Stop()

	fee, err := e.GetFees(c.Context, asin, price, dimensionsFromContext(c))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %s\n", color.CyanString("%s", asin), color.GreenString("%s", formatAmount(fee.InexactFloat64(), currency.JPY)))
	return nil
}

func getFeesEstimate(c *cli.Context) error {
	asin, price, err := itemFromContext(c)
	if err != nil {
		return err
	}
	e, err := newEngine(c, false)
	if err != nil {
		return err
	}
	if err := e.Start(c.Context); err != nil {
		return err
	}
	defer e.Stop()

	result, err := e.GetFeesEstimate(c.Context, asin, price)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, result)
}

func getStorageFee(c *cli.Context) error {
	e, err := newEngine(c, false)
	if err != nil {
		return err
	}
	fee, err := e.GetStorageFee(dimensionsFromContext(c))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n", color.GreenString("%s", formatAmount(float64(fee), currency.JPY)))
	return nil
}

func getHistory(c *cli.Context) error {
	asin, err := argOrFlag(c, "asin", 0)
	if err != nil {
		return err
	}
	e, err := newEngine(c, true)
	if err != nil {
		return err
	}
	if err := e.Start(c.Context); err != nil {
		return err
	}
	defer e.Stop()

	history, err := e.History(c.Context, asin, c.Int("limit"))
	if err != nil {
		return err
	}
	if history == nil {
		history = []estimate.Data{}
	}
	return jsonOutput(c.App.Writer, history)
}

func serve(c *cli.Context) error {
	e, err := newEngine(c, false)
	if err != nil {
		return err
	}
	e.Config.APIServer.Enabled = true
	if c.IsSet("listen") {
		e.Config.APIServer.ListenAddress = c.String("listen")
	}
	engine.PrintSettings(e)
	if err := e.Start(c.Context); err != nil {
		return err
	}
	defer e.Stop()

	fmt.Fprintf(c.App.Writer, "Serving fee estimates on %s\n", color.CyanString("http://%s/v1", e.APIServerAddress()))
	select {
	case <-c.Context.Done():
	case <-signaler.WaitForInterrupt():
	}
	return nil
}

func encryptConfig(c *cli.Context) error {
	password, err := passwordPrompt("New config password", true)
	if err != nil {
		return err
	}
	if err := config.EncryptConfigFile(configFile, password); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s encrypted\n", configFile)
	return nil
}

func decryptConfig(c *cli.Context) error {
	password, err := passwordPrompt("Config password", false)
	if err != nil {
		return err
	}
	if err := config.DecryptConfigFile(configFile, password); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s decrypted\n", configFile)
	return nil
}
