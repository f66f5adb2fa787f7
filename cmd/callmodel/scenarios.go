package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"callmodel/internal/fixture"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in scenarios",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enable, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		return writeScenarioTable(cmd.OutOrStdout(), fixture.Scenarios(), enable)
	},
}

// writeScenarioTable prints name, resolved kind and source, one scenario per
// line, with the first two columns padded to their display width.
func writeScenarioTable(w io.Writer, scenarios []fixture.Scenario, enable bool) error {
	name := color.New(color.FgCyan)
	kind := color.New(color.FgMagenta)
	for _, c := range []*color.Color{name, kind} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	nameWidth, kindWidth := runewidth.StringWidth("NAME"), runewidth.StringWidth("KIND")
	for _, sc := range scenarios {
		nameWidth = max(nameWidth, runewidth.StringWidth(sc.Name))
		kindWidth = max(kindWidth, runewidth.StringWidth(sc.Want.String()))
	}
	if _, err := fmt.Fprintf(w, "%s  %s  %s\n", runewidth.FillRight("NAME", nameWidth), runewidth.FillRight("KIND", kindWidth), "SOURCE"); err != nil {
		return err
	}
	for _, sc := range scenarios {
		_, err := fmt.Fprintf(w, "%s  %s  %s\n",
			name.Sprint(runewidth.FillRight(sc.Name, nameWidth)),
			kind.Sprint(runewidth.FillRight(sc.Want.String(), kindWidth)),
			sc.Source)
		if err != nil {
			return err
		}
	}
	return nil
}
