package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"leadfinder/leads/infra"
)

const defaultExportFile = "leads.csv"

func (a *app) leadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Manage saved leads",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved leads",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printer.saved(a.book.Saved())
		},
	}

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export saved leads as CSV",
		Long: `Export saved leads as CSV, in the order they were saved.

Use "-o -" to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.export(output)
		},
	}
	export.Flags().StringVarP(&output, "output", "o", defaultExportFile, "output file")

	remove := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved lead",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.book.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("lead %q is not saved", args[0])
			}
			a.printer.Success("Removed " + args[0] + " from saved leads")
			return nil
		},
	}

	cmd.AddCommand(list, export, remove)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show search and lead counters",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printer.stats(a.book.Stats())
		},
	}
}

func (a *app) export(path string) error {
	leads := a.book.Saved()
	if len(leads) == 0 {
		a.printer.Note("No saved leads to export.")
		return nil
	}

	var w io.Writer = a.out
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	if err := infra.WriteCSV(w, leads); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if path != "-" {
		a.printer.Success(fmt.Sprintf("Exported %d leads to %s", len(leads), path))
	}
	return nil
}
