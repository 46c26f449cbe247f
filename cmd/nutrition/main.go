// Command nutrition queries the built-in food reference table from a
// terminal, using the same resolver and calculator as the API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/daypilot/backend/internal/nutrition"
)

type options struct {
	match  string
	asJSON bool
}

func (o *options) calculator() *nutrition.Calculator {
	return nutrition.NewCalculator(nutrition.NewResolver(nutrition.DefaultTable(), nutrition.ParseMatchStrategy(o.match)))
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "nutrition",
		Short: "Look up protein and calories for everyday foods",
		Long: `Query the DayPilot food reference table.

Available subcommands:
  lookup    - Resolve a food name to its reference entry
  calculate - Compute protein and calories for a quantity
  table     - Print the whole reference table
  units     - List the accepted units`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.match, "match", "first", "Containment match strategy: first or longest")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of text")

	root.AddCommand(
		newLookupCmd(opts),
		newCalculateCmd(opts),
		newTableCmd(opts),
		newUnitsCmd(opts),
	)
	return root
}

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <food>",
		Short: "Resolve a food name to its reference entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			food := strings.Join(args, " ")
			match, ok := opts.calculator().Resolve(food)
			out := cmd.OutOrStdout()
			if opts.asJSON {
				if !ok {
					return writeJSON(out, map[string]any{"query": food, "found": false})
				}
				return writeJSON(out, map[string]any{"query": food, "found": true, "matched_key": match.Key, "entry": match.Entry})
			}
			if !ok {
				fmt.Fprintf(out, "%q is not in the reference table\n", food)
				return nil
			}
			fmt.Fprintf(out, "%s: %.1fg protein, %.0f kcal %s (default unit %s)\n",
				match.Key, match.Protein, match.Calories, match.Basis, match.DefaultUnit)
			return nil
		},
	}
}

func newCalculateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "calculate <food> <quantity> <unit>",
		Short: "Compute protein and calories for a quantity",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit := args[len(args)-1]
			qty, err := strconv.ParseFloat(args[len(args)-2], 64)
			if err != nil || qty <= 0 {
				return fmt.Errorf("quantity must be a positive number, got %q", args[len(args)-2])
			}
			if !nutrition.ValidUnit(unit) {
				return fmt.Errorf("unit %q is not supported; run 'nutrition units'", unit)
			}
			food := strings.Join(args[:len(args)-2], " ")

			res := opts.calculator().Calculate(food, qty, unit)
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, res)
			}
			if !res.IsFromReference {
				fmt.Fprintf(out, "%q is not in the reference table; enter its nutrition manually\n", food)
				return nil
			}
			fmt.Fprintf(out, "%g %s %s (%s): %.1fg protein, %.0f kcal\n",
				qty, unit, food, res.MatchedKey, res.TotalProtein, res.TotalCalories)
			return nil
		},
	}
}

func newTableCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the whole reference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := nutrition.DefaultTable()
			out := cmd.OutOrStdout()
			if opts.asJSON {
				rows := make([]nutrition.Item, 0, table.Len())
				for _, key := range table.Keys() {
					e, _ := table.Get(key)
					rows = append(rows, nutrition.Item{Name: key, Entry: e})
				}
				return writeJSON(out, rows)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FOOD\tPROTEIN\tCALORIES\tUNIT\tGRAMS/UNIT")
			for _, key := range table.Keys() {
				e, _ := table.Get(key)
				fmt.Fprintf(w, "%s\t%.1f\t%.0f\t%s\t%g\n", key, e.Protein, e.Calories, e.DefaultUnit, e.GramsPerUnit)
			}
			return w.Flush()
		},
	}
}

func newUnitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List the accepted units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, nutrition.FoodUnits)
			}
			fmt.Fprintln(out, strings.Join(nutrition.FoodUnits, " "))
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
