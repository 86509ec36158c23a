package infra

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadfinder/leads/domain"
)

func strp(s string) *string { return &s }

func TestWriteCSV_Format(t *testing.T) {
	rating := 4.5
	count := 120
	leads := []domain.Lead{
		{
			ID:              "p1",
			Name:            `Joe's "Best" Diner`,
			Address:         "1 Main St, Springfield",
			PhoneNumber:     strp("+1 555-0100"),
			WebsiteURI:      strp("https://joes.example"),
			Rating:          &rating,
			UserRatingCount: &count,
			Types:           []string{"american_restaurant", "food"},
			GoogleMapsURI:   strp("https://maps.example/p1"),
		},
		{ID: "p2", Name: "Bare"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, leads))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Address,Phone,Website,Rating,Review Count,Type,Google Maps URL", lines[0])
	assert.Equal(t,
		`"Joe's ""Best"" Diner","1 Main St, Springfield","+1 555-0100","https://joes.example",4.5,120,"american restaurant","https://maps.example/p1"`,
		lines[1])
	assert.Equal(t, `"Bare","","","",,,"",""`, lines[2])
}

func TestWriteCSV_ReparsesExactly(t *testing.T) {
	leads := []domain.Lead{{ID: "p1", Name: `Joe's "Best" Diner`, Address: "a, b"}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, leads))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `Joe's "Best" Diner`, records[1][0])
	assert.Equal(t, "a, b", records[1][1])
}

func TestWriteCSV_ZeroRatingIsEmpty(t *testing.T) {
	zero := 0.0
	none := 0
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.Lead{{ID: "x", Rating: &zero, UserRatingCount: &none}}))

	assert.Contains(t, buf.String(), `"","","","",,,`)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Name,Address,Phone,Website,Rating,Review Count,Type,Google Maps URL", buf.String())
}
