package main

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"leadfinder/leads/application"
)

const shellHelp = `commands:
  search <query> [in <location>]   new search (replaces results)
  more                             load the next page
  save <n>                         save or unsave result n
  unsave <id>                      remove a saved lead
  leads                            list saved leads
  export [file]                    export saved leads as CSV
  stats                            show counters
  suggest <text>                   suggest locations
  help                             this text
  quit                             exit`

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive search session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runShell(cmd.Context())
		},
	}
}

func (a *app) runShell(ctx context.Context) error {
	sess := application.NewSession(a.client, a.book, a.logger)
	ac := application.NewAutocompleter(a.client, application.WithDebounce(0), application.WithAutocompleteLogger(a.logger))

	a.printer.Note(`leadctl shell. Type "help" for commands.`)
	sc := bufio.NewScanner(a.in)
	for {
		a.printer.Printf("> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch name {
		case "quit", "exit":
			return nil
		case "help":
			a.printer.Printf("%s\n", shellHelp)
		case "search":
			query, location := splitLocation(rest)
			err = a.runSearch(ctx, sess, query, location, 1)
		case "more":
			err = a.shellMore(ctx, sess)
		case "save":
			err = a.shellSave(ctx, sess, rest)
		case "unsave":
			var ok bool
			if ok, err = a.book.Remove(ctx, rest); err == nil {
				if ok {
					a.printer.Success("Removed " + rest + " from saved leads")
				} else {
					a.printer.Failure("not saved: " + rest)
				}
			}
		case "leads":
			err = a.printer.saved(a.book.Saved())
		case "export":
			if rest == "" {
				rest = defaultExportFile
			}
			err = a.export(rest)
		case "stats":
			err = a.printer.stats(a.book.Stats())
		case "suggest":
			err = a.runSuggest(ctx, ac, rest)
		default:
			a.printer.Failure("unknown command: " + name)
		}

		if err != nil && !errors.Is(err, errSearchFailed) {
			a.printer.Failure(err.Error())
		}
	}
	return sc.Err()
}

func (a *app) shellMore(ctx context.Context, sess *application.Session) error {
	ran, err := sess.LoadMore(ctx)
	if !ran {
		a.printer.Note("No more results.")
		return nil
	}
	if err != nil {
		a.printer.Failure(sess.Snapshot().Err)
		return errSearchFailed
	}
	return a.printer.results(sess.Snapshot(), a.book)
}

func (a *app) shellSave(ctx context.Context, sess *application.Session, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return errors.New("usage: save <n>")
	}
	lead, ok := sess.Result(n)
	if !ok {
		return errors.New("no result " + arg)
	}
	_, msg, err := a.book.Toggle(ctx, lead)
	if err != nil {
		return err
	}
	a.printer.Success(msg)
	return nil
}

// splitLocation separa "cafes in Lisbon" em ("cafes", "Lisbon"), usando o último " in ".
func splitLocation(s string) (string, string) {
	i := strings.LastIndex(s, " in ")
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(" in "):])
}
