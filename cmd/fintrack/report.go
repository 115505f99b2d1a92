package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/summary"
)

// withApp opens the ledger for the duration of fn.
func withApp(ctx context.Context, e *env, publish bool, fn func(*cli.App) error) error {
	app, err := cli.OpenApp(ctx, e.cfg, e.logger, publish)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer app.Close()
	return fn(app)
}

func newExportCmd(e *env) *cobra.Command {
	var dir, prefix string
	var stdout bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ledger as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = e.cfg.ExportDir
			}
			if prefix == "" {
				prefix = e.cfg.ExportPrefix
			}
			out := cmd.OutOrStdout()
			return withApp(cmd.Context(), e, false, func(app *cli.App) error {
				txs := app.Tracker.Transactions()
				if stdout {
					if doc, ok := export.CSV(txs); ok {
						_, err := fmt.Fprintln(out, string(doc))
						return err
					}
					return nil
				}
				path, err := export.WriteFile(dir, prefix, txs, app.Tracker.Now())
				if errors.Is(err, export.ErrEmptyLedger) {
					fmt.Fprintln(out, "No transactions, nothing written")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported %d transactions to %s\n", len(txs), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default EXPORT_DIR)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "file name prefix (default EXPORT_PREFIX)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the CSV instead of writing a file")
	return cmd
}

func newSummaryCmd(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print totals, the monthly series and the expense breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), e, false, func(app *cli.App) error {
				txs, cats := app.Tracker.Snapshot()
				s := summary.Build(txs, cats, app.Tracker.Now())
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(s)
				}
				return printSummary(cmd.OutOrStdout(), s, e.cfg.CurrencySymbol)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printSummary(w io.Writer, s summary.Summary, symbol string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Income\t%s\n", core.FormatMoney(s.Totals.Income, symbol))
	fmt.Fprintf(tw, "Expenses\t%s\n", core.FormatMoney(s.Totals.Expense, symbol))
	fmt.Fprintf(tw, "Balance\t%s\n", core.FormatMoney(s.Totals.Balance, symbol))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSES")
	for _, m := range s.Monthly {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Label, core.FormatMoney(m.Income, symbol), core.FormatMoney(m.Expense, symbol))
	}
	fmt.Fprintln(tw)

	if len(s.Breakdown) == 0 {
		fmt.Fprintln(tw, "No expenses recorded")
		return tw.Flush()
	}
	fmt.Fprintln(tw, "CATEGORY\tSPENT\tSHARE")
	for _, sl := range s.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\n", sl.Name, core.FormatMoney(sl.Value, symbol), sl.Percent)
	}
	return tw.Flush()
}

// offlineNote warns that a running server keeps its own copy of the registry
// and overwrites the stored one on its next category change.
const offlineNote = "Run this while fintrack serve is stopped: a running server does not reload\n" +
	"the registry and its next category change overwrites this one."

func newCategoriesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), e, false, func(app *cli.App) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE")
				for _, kind := range []core.Kind{core.Income, core.Expense} {
					for _, c := range app.Tracker.CategoriesByKind(kind) {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Kind)
					}
				}
				return tw.Flush()
			})
		},
	}

	var kind string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Long:  "Add a category to the stored registry.\n\n" + offlineNote,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), e, true, func(app *cli.App) error {
				c, err := app.Tracker.AddCategory(cmd.Context(), core.CategoryInput{Name: args[0], Kind: kind})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s category %q (%s)\n", c.Kind, c.Name, c.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&kind, "type", string(core.Expense), "income or expense")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category; transactions keep the reference",
		Long:  "Delete a category from the stored registry. Transactions keep the stale reference.\n\n" + offlineNote,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), e, true, func(app *cli.App) error {
				removed, err := app.Tracker.DeleteCategory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "No category with id %s\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}
