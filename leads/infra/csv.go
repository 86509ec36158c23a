package infra

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"leadfinder/leads/domain"
)

var csvHeader = []string{"Name", "Address", "Phone", "Website", "Rating", "Review Count", "Type", "Google Maps URL"}

// WriteCSV escreve os leads na ordem recebida. Campos de texto vão sempre entre aspas;
// nota e número de avaliações vão sem aspas e ficam vazios quando ausentes ou zero.
func WriteCSV(w io.Writer, leads []domain.Lead) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(csvHeader, ","))

	for _, l := range leads {
		bw.WriteByte('\n')
		fields := []string{
			quote(l.Name),
			quote(l.Address),
			quote(deref(l.PhoneNumber)),
			quote(deref(l.WebsiteURI)),
			rating(l.Rating),
			reviews(l.UserRatingCount),
			quote(strings.ReplaceAll(l.PrimaryType(), "_", " ")),
			quote(deref(l.GoogleMapsURI)),
		}
		bw.WriteString(strings.Join(fields, ","))
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rating(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func reviews(v *int) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.Itoa(*v)
}
