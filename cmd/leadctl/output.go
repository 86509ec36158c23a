package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"leadfinder/leads/application"
	"leadfinder/leads/domain"
)

type printer struct {
	out     io.Writer
	success func(a ...any) string
	failure func(a ...any) string
	dim     func(a ...any) string
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:     out,
		success: color.New(color.FgGreen).SprintFunc(),
		failure: color.New(color.FgRed).SprintFunc(),
		dim:     color.New(color.Faint).SprintFunc(),
	}
}

func (p *printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) Success(msg string) { fmt.Fprintln(p.out, p.success(msg)) }
func (p *printer) Failure(msg string) { fmt.Fprintln(p.out, p.failure(msg)) }
func (p *printer) Note(msg string)    { fmt.Fprintln(p.out, p.dim(msg)) }

func (p *printer) table(headers []string, rows [][]string) error {
	t := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	t.Header(headers)
	if err := t.Bulk(rows); err != nil {
		return err
	}
	return t.Render()
}

// results imprime a página corrente numerada; "*" marca os leads já salvos.
func (p *printer) results(snap application.Snapshot, book *application.Book) error {
	if len(snap.Results) == 0 {
		p.Note("No businesses found.")
		return nil
	}
	rows := make([][]string, 0, len(snap.Results))
	for i, l := range snap.Results {
		mark := ""
		if book.IsSaved(l.ID) {
			mark = "*"
		}
		rows = append(rows, leadRow(strconv.Itoa(i+1)+mark, l))
	}
	if err := p.table([]string{"#", "Name", "Address", "Phone", "Rating", "Type"}, rows); err != nil {
		return err
	}
	summary := fmt.Sprintf("Showing %d results for %q", len(snap.Results), queryLabel(snap))
	if snap.HasMore {
		summary += " (more available)"
	}
	p.Note(summary)
	return nil
}

func (p *printer) saved(leads []domain.Lead) error {
	if len(leads) == 0 {
		p.Note("No saved leads yet.")
		return nil
	}
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, leadRow(l.ID, l))
	}
	return p.table([]string{"ID", "Name", "Address", "Phone", "Rating", "Type"}, rows)
}

func (p *printer) stats(s domain.Stats) error {
	return p.table([]string{"Metric", "Value"}, [][]string{
		{"Total searches", strconv.Itoa(s.TotalSearches)},
		{"Leads found", strconv.Itoa(s.TotalLeadsFound)},
		{"Saved leads", strconv.Itoa(s.SavedLeads)},
	})
}

func leadRow(first string, l domain.Lead) []string {
	phone := ""
	if l.PhoneNumber != nil {
		phone = *l.PhoneNumber
	}
	rating := ""
	if l.Rating != nil {
		rating = strconv.FormatFloat(*l.Rating, 'f', 1, 64)
		if l.UserRatingCount != nil {
			rating += " (" + strconv.Itoa(*l.UserRatingCount) + ")"
		}
	}
	return []string{first, l.Name, l.Address, phone, rating, strings.ReplaceAll(l.PrimaryType(), "_", " ")}
}

func queryLabel(snap application.Snapshot) string {
	if snap.Location == "" {
		return snap.Query
	}
	return snap.Query + " in " + snap.Location
}
