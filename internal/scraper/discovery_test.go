package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totw-tracker/internal/store"
	"totw-tracker/internal/types"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const squadListingHTML = `<html><body>
<a class="squad-box text-ellipsis xs-column" href="/26/totw/1"><div class="squads-header bold"> TOTW  1 </div></a>
<a class="squad-box text-ellipsis xs-column" href="/26/squad-builder/99"><div class="squads-header bold">Builder</div></a>
<a class="squad-box text-ellipsis xs-column" href="/26/totw/2"><span>no header</span></a>
<a class="squad-box text-ellipsis xs-column" href="/26/totw/3"><div class="squads-header bold">   </div></a>
<a class="squad-box text-ellipsis xs-column" href="https://cdn.example.com/26/totw/4"><div class="squads-header bold">TOTW 4</div></a>
<a class="squad-box text-ellipsis xs-column" href="/26/totw/5"><div class="squads-header bold">TOTW 1</div></a>
</body></html>`

func TestDiscoverSquads(t *testing.T) {
	doc := mustDoc(t, squadListingHTML)

	squads := DiscoverSquads(doc, "https://www.futbin.com", store.DefaultSelectors())

	assert.Len(t, squads, 2)
	assert.Equal(t, "https://www.futbin.com/26/totw/5", squads["TOTW 1"].URL, "duplicate names keep the last link")
	assert.Equal(t, "https://cdn.example.com/26/totw/4", squads["TOTW 4"].URL)
	assert.Nil(t, squads["TOTW 1"].LastChecked)
	assert.NotNil(t, squads["TOTW 1"].Players)
	assert.Empty(t, squads["TOTW 1"].Players)
	assert.NotContains(t, squads, "Builder")
}

func TestDiscoverSquadsEmptyPage(t *testing.T) {
	squads := DiscoverSquads(mustDoc(t, "<html></html>"), "https://www.futbin.com", store.DefaultSelectors())
	assert.NotNil(t, squads)
	assert.Empty(t, squads)
}

const squadPageHTML = `<html><body>
<div id="cardlid1"><a href="/26/player/100/alpha"><div class="playercard-26 playercard-m pointer-events-none" title="Alpha"></div></a></div>
<div id="cardlid2"><a href="/26/player/200/beta"><div class="playercard-26 playercard-m pointer-events-none"></div></a></div>
<div id="cardlid3"><span>empty slot</span></div>
<div id="cardlid5"><a href="/26/player/500/gamma"><div class="playercard-26 playercard-m pointer-events-none" title=" Gamma "></div></a></div>
<div id="cardlid12"><a href="/26/player/1200/extra"><div class="playercard-26 playercard-m pointer-events-none" title="Extra"></div></a></div>
</body></html>`

func TestDiscoverPlayers(t *testing.T) {
	doc := mustDoc(t, squadPageHTML)

	players := DiscoverPlayers(doc, "https://www.futbin.com", store.DefaultSelectors(), MaxSquadPlayers)

	want := []types.PlayerRef{
		{Name: "Alpha", URL: "https://www.futbin.com/26/player/100/alpha"},
		{Name: "Player 2", URL: "https://www.futbin.com/26/player/200/beta"},
		{Name: "Gamma", URL: "https://www.futbin.com/26/player/500/gamma"},
	}
	assert.Equal(t, want, players)
}

func TestDiscoverPlayersNoCards(t *testing.T) {
	players := DiscoverPlayers(mustDoc(t, "<html></html>"), "https://www.futbin.com", store.DefaultSelectors(), MaxSquadPlayers)
	assert.NotNil(t, players)
	assert.Empty(t, players)
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://www.futbin.com", "/26/totw/1", "https://www.futbin.com/26/totw/1"},
		{"https://www.futbin.com/", "26/totw/1", "https://www.futbin.com/26/totw/1"},
		{"https://www.futbin.com", "https://other.com/x", "https://other.com/x"},
	}
	for _, tt := range tests {
		if got := resolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, expected %q", tt.base, tt.href, got, tt.want)
		}
	}
}
