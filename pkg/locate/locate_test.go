package locate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pprasanth/eplharvest/internal/models"
	"github.com/pprasanth/eplharvest/internal/runlog"
	"github.com/pprasanth/eplharvest/pkg/fetch"
)

const seasonPage = `
<html><body>
<table class="items">
<tbody>
<tr><td class="hauptlink"><a href="/arsenal-fc/startseite/verein/11">Arsenal FC</a></td></tr>
<tr><td class="hauptlink"><a href="/ghost-fc/startseite/verein/99"></a></td></tr>
<tr><td class="hauptlink"><a href="/chelsea-fc/startseite/verein/631">Chelsea FC</a></td></tr>
<tr><td class="hauptlink"><a href="/arsenal-fc/startseite/verein/11">Arsenal FC</a></td></tr>
</tbody>
</table>
</body></html>`

const squadPage = `
<html><body>
<table class="items">
<tbody>
<tr><td class="hauptlink"><a href="/john-doe/profil/spieler/123">John Doe</a></td></tr>
<tr><td class="hauptlink"><a href="/jane-roe/profil/spieler/456">Jane Roe</a></td></tr>
<tr><td class="hauptlink"><a href="/john-doe/profil/spieler/123">John Doe</a></td></tr>
<tr><td class="hauptlink"><a href="/somewhere/else">Not a player</a></td></tr>
</tbody>
</table>
</body></html>`

func newTestLocator(handler http.HandlerFunc) (*Locator, *httptest.Server) {
	server := httptest.NewServer(handler)
	fetcher := fetch.NewFetcher(fetch.Options{Logger: runlog.Discard()})
	return New(fetcher, server.URL, "GB1", runlog.Discard()), server
}

func TestTeams(t *testing.T) {
	var gotPath string
	l, server := newTestLocator(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Write([]byte(seasonPage))
	})
	defer server.Close()

	teams := l.Teams(context.Background(), models.Season{StartYear: 2021})

	assert.Equal(t, "/premier-league/startseite/wettbewerb/GB1/plus/?saison_id=2021", gotPath)
	// Duplicates and the nameless anchor are dropped, and the anchor
	// sitting mid-table does not shift the clubs after it onto the
	// wrong URLs.
	require.Len(t, teams, 2)
	assert.Equal(t, "11", teams[0].ID)
	assert.Equal(t, "Arsenal FC", teams[0].Name)
	assert.True(t, strings.HasSuffix(teams[0].URL, "/arsenal-fc/startseite/verein/11/saison_id/2021"))
	assert.Equal(t, "631", teams[1].ID)
	assert.Equal(t, "Chelsea FC", teams[1].Name)
	assert.True(t, strings.HasSuffix(teams[1].URL, "/chelsea-fc/startseite/verein/631/saison_id/2021"))
}

func TestTeamsFetchFailure(t *testing.T) {
	l, server := newTestLocator(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	teams := l.Teams(context.Background(), models.Season{StartYear: 2016})
	assert.Empty(t, teams)
}

func TestTeamsEmptyPage(t *testing.T) {
	l, server := newTestLocator(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Nothing here</p></body></html>`))
	})
	defer server.Close()

	teams := l.Teams(context.Background(), models.Season{StartYear: 2016})
	assert.Empty(t, teams)
}

func TestPlayers(t *testing.T) {
	l, server := newTestLocator(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(squadPage))
	})
	defer server.Close()

	team := models.Team{ID: "11", Name: "Arsenal FC", URL: server.URL + "/squad"}
	players := l.Players(context.Background(), models.Season{StartYear: 2021}, team)

	require.Len(t, players, 2, "players deduplicated by identifier")
	assert.Equal(t, "123", players[0].ID)
	assert.Equal(t, "john-doe", players[0].Slug)
	assert.Equal(t, "John Doe", players[0].Name)
	assert.Equal(t, "456", players[1].ID)
}

func TestPlayersNotFound(t *testing.T) {
	l, server := newTestLocator(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	team := models.Team{ID: "11", Name: "Arsenal FC", URL: server.URL + "/squad"}
	players := l.Players(context.Background(), models.Season{StartYear: 2021}, team)
	assert.Empty(t, players)
}
