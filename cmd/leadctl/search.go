package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"leadfinder/leads/application"
)

func (a *app) searchCmd() *cobra.Command {
	var (
		location string
		pages    int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for businesses",
		Long: `Search for businesses matching a category, optionally near a location.

Examples:
  leadctl search "coffee shops" --location Lisbon
  leadctl search plumbers -l "Austin, TX" --pages 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := application.NewSession(a.client, a.book, a.logger)
			return a.runSearch(cmd.Context(), sess, strings.Join(args, " "), location, pages)
		},
	}
	cmd.Flags().StringVarP(&location, "location", "l", "", "city or area to search in")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of result pages to fetch")
	return cmd
}

// runSearch faz a busca e pede mais páginas enquanto houver token, até pages.
func (a *app) runSearch(ctx context.Context, sess *application.Session, query, location string, pages int) error {
	snap, err := sess.Submit(ctx, query, location)
	if err != nil {
		a.printer.Failure(snap.Err)
		return errSearchFailed
	}
	for i := 1; i < pages && snap.HasMore; i++ {
		if _, err := sess.LoadMore(ctx); err != nil {
			a.logger.Debug("load more failed", "page", i+1, "error", err)
			break
		}
		snap = sess.Snapshot()
	}
	return a.printer.results(sess.Snapshot(), a.book)
}

// errSearchFailed evita repetir a mensagem já impressa para o usuário.
var errSearchFailed = errors.New("search failed")

func (a *app) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>",
		Short: "Suggest locations for a partial name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ac := application.NewAutocompleter(a.client, application.WithDebounce(0), application.WithAutocompleteLogger(a.logger))
			return a.runSuggest(cmd.Context(), ac, strings.Join(args, " "))
		},
	}
}

func (a *app) runSuggest(ctx context.Context, ac *application.Autocompleter, input string) error {
	out, err := ac.Suggest(ctx, input)
	if err != nil {
		return err
	}
	if len(out) == 0 {
		a.printer.Note("No suggestions.")
		return nil
	}
	for _, s := range out {
		a.printer.Printf("%s\n", s.Description)
	}
	return nil
}
