package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var errPasswordMismatch = errors.New("passwords do not match")

// passwordPrompt asks for a password on the terminal, twice when confirm is
// set
var passwordPrompt = func(msg string, confirm bool) ([]byte, error) {
	var password string
	if err := survey.AskOne(&survey.Password{Message: msg}, &password, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	if confirm {
		var again string
		if err := survey.AskOne(&survey.Password{Message: "Confirm " + msg}, &again); err != nil {
			return nil, err
		}
		if again != password {
			return nil, errPasswordMismatch
		}
	}
	return []byte(password), nil
}

var headerColours = map[string]func(format string, a ...interface{}) string{
	"[INFO]":  color.BlueString,
	"[DEBUG]": color.CyanString,
	"[WARN]":  color.YellowString,
	"[ERROR]": color.RedString,
}

// colourLogHook writes log lines to stderr with coloured headers
func colourLogHook(header, subLoggerName string, a ...any) bool {
	colourFn, ok := headerColours[header]
	if !ok {
		return false
	}
	fmt.Fprintf(color.Error, "%s %s %s\n", colourFn("%s", header), subLoggerName, fmt.Sprint(a...))
	return true
}

func jsonOutput(w io.Writer, in any) error {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}

// formatAmount formats an amount with the currency symbol and grouping of
// the currency's home locale
func formatAmount(amount float64, unit currency.Unit) string {
	tag := language.English
	if unit == currency.JPY {
		tag = language.Japanese
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
