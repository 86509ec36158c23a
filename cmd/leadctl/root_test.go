package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appplaces "leadfinder/places/application"
	"leadfinder/places/domain"
	"leadfinder/places/httpapi"
)

// fakeDirectory serve duas páginas para qualquer busca.
type fakeDirectory struct {
	mu     sync.Mutex
	tokens []string
}

func (f *fakeDirectory) FindPlaces(_ context.Context, q domain.Query, token string) (domain.SearchResult, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()

	if token == "" {
		return domain.SearchResult{
			Places: []domain.Business{
				{ID: "p1", Name: "Blue Door Cafe", Address: "1 Rua A, " + q.Location, Types: []string{"coffee_shop"}},
				{ID: "p2", Name: `Joe's "Best" Diner`, Address: "2 Rua B"},
			},
			NextPageToken: "PAGE2",
		}, nil
	}
	return domain.SearchResult{Places: []domain.Business{{ID: "p3", Name: "Third Place", Address: "3 Rua C"}}}, nil
}

func (f *fakeDirectory) SuggestLocations(_ context.Context, input string) ([]domain.Suggestion, error) {
	return []domain.Suggestion{{Description: input + "on, Portugal", PlaceID: "lis"}}, nil
}

func newTestServer(t *testing.T, dir *fakeDirectory) string {
	t.Helper()
	orch := appplaces.NewOrchestrator(appplaces.Config{Finder: dir, Suggester: dir})
	srv := httptest.NewServer(httpapi.New(orch, httpapi.Options{}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	err := execute(strings.NewReader(stdin), out, new(bytes.Buffer), args)
	return out.String(), err
}

func TestRootCmd_Help(t *testing.T) {
	out, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	for _, sub := range []string{"search", "shell", "leads", "stats", "suggest"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "", "nonexistent-command")
	assert.Error(t, err)
}

func TestSearch_FetchesRequestedPages(t *testing.T) {
	dir := &fakeDirectory{}
	url := newTestServer(t, dir)

	out, err := runCLI(t, "", "--server", url, "--ephemeral", "search", "cafes", "--location", "Lisbon", "--pages", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "Blue Door Cafe")
	assert.Contains(t, out, "Third Place")
	assert.Contains(t, out, "coffee shop")
	assert.Contains(t, out, `Showing 3 results for "cafes in Lisbon"`)
	// a segunda página não tem token, então não há terceira chamada
	assert.Equal(t, []string{"", "PAGE2"}, dir.tokens)
}

func TestSearch_EmptyQueryShowsMessage(t *testing.T) {
	url := newTestServer(t, &fakeDirectory{})

	out, err := runCLI(t, "", "--server", url, "--ephemeral", "search", "  ")
	assert.ErrorIs(t, err, errSearchFailed)
	assert.Contains(t, out, domain.MessageEmptyQuery)
}

func TestShell_SaveExportAndStats(t *testing.T) {
	url := newTestServer(t, &fakeDirectory{})
	dataDir := t.TempDir()
	csvPath := filepath.Join(t.TempDir(), "out.csv")

	script := strings.Join([]string{
		"search cafes in Lisbon",
		"save 2",
		"more",
		"save 3",
		"more",
		"stats",
		"export " + csvPath,
		"quit",
	}, "\n")
	out, err := runCLI(t, script, "--server", url, "--data-dir", dataDir, "shell")
	require.NoError(t, err)

	assert.Contains(t, out, `Saved Joe's "Best" Diner to your leads`)
	assert.Contains(t, out, "Saved Third Place to your leads")
	assert.Contains(t, out, "No more results.")
	assert.Contains(t, out, "Exported 2 leads to "+csvPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `"Joe's ""Best"" Diner"`))
	assert.True(t, strings.HasPrefix(lines[2], `"Third Place"`))

	// estado persiste entre execuções
	out, err = runCLI(t, "", "--server", url, "--data-dir", dataDir, "leads", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "p2")
	assert.Contains(t, out, "p3")

	out, err = runCLI(t, "", "--server", url, "--data-dir", dataDir, "leads", "remove", "p2")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed p2")

	_, err = runCLI(t, "", "--server", url, "--data-dir", dataDir, "leads", "remove", "p2")
	assert.Error(t, err)
}

func TestShell_ToggleTwiceUnsaves(t *testing.T) {
	url := newTestServer(t, &fakeDirectory{})

	out, err := runCLI(t, "search cafes\nsave 1\nsave 1\nleads\nquit\n", "--server", url, "--ephemeral", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved Blue Door Cafe to your leads")
	assert.Contains(t, out, "Removed Blue Door Cafe from saved leads")
	assert.Contains(t, out, "No saved leads yet.")
}

func TestSuggest(t *testing.T) {
	url := newTestServer(t, &fakeDirectory{})

	out, err := runCLI(t, "", "--server", url, "--ephemeral", "suggest", "Lisb")
	require.NoError(t, err)
	assert.Contains(t, out, "Lisbon, Portugal")

	out, err = runCLI(t, "", "--server", url, "--ephemeral", "suggest", "Li")
	require.NoError(t, err)
	assert.Contains(t, out, "No suggestions.")
}

func TestExport_NothingSaved(t *testing.T) {
	out, err := runCLI(t, "", "--ephemeral", "leads", "export", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved leads to export.")
}

func TestSplitLocation(t *testing.T) {
	q, l := splitLocation("coffee in the park in Lisbon")
	assert.Equal(t, "coffee in the park", q)
	assert.Equal(t, "Lisbon", l)

	q, l = splitLocation("dentists")
	assert.Equal(t, "dentists", q)
	assert.Equal(t, "", l)
}
