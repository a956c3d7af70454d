package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"totw-tracker/internal/store"
	"totw-tracker/internal/types"
)

// MaxSquadPlayers is the number of card positions on a squad page
const MaxSquadPlayers = 11

// DiscoverSquads reads squad links from a listing page. Anchors whose href
// does not match the squad pattern, or that lack a name element, are
// skipped. Duplicate names keep the last anchor.
func DiscoverSquads(doc *goquery.Document, baseURL string, sel store.Selectors) types.SquadCache {
	squads := types.SquadCache{}

	doc.Find(sel.SquadLink).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !strings.Contains(href, sel.SquadHrefPattern) {
			return
		}
		nameEl := a.Find(sel.SquadName).First()
		if nameEl.Length() == 0 {
			return
		}
		name := normalizeText(nameEl.Text())
		if name == "" {
			return
		}
		squads[name] = types.SquadRecord{
			URL:     resolveURL(baseURL, href),
			Players: []types.PlayerRef{},
		}
	})

	return squads
}

// DiscoverPlayers reads up to maxPlayers card positions in order. A
// position without a link is skipped; a link without a name gets a
// positional placeholder.
func DiscoverPlayers(doc *goquery.Document, baseURL string, sel store.Selectors, maxPlayers int) []types.PlayerRef {
	players := []types.PlayerRef{}

	for i := 1; i <= maxPlayers; i++ {
		card := doc.Find(fmt.Sprintf(sel.PlayerCardLink, i)).First()
		if card.Length() == 0 {
			continue
		}
		href, ok := card.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			continue
		}

		name := ""
		if nameEl := card.Find(sel.PlayerName).First(); nameEl.Length() > 0 {
			name = strings.TrimSpace(nameEl.AttrOr(sel.PlayerNameAttr, ""))
		}
		if name == "" {
			name = fmt.Sprintf("Player %d", i)
		}

		players = append(players, types.PlayerRef{
			Name: name,
			URL:  resolveURL(baseURL, href),
		})
	}

	return players
}

// normalizeText trims and collapses inner whitespace
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL makes href absolute against baseURL
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return baseURL + href
	}
	if ref.IsAbs() {
		return ref.String()
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + href
	}
	return base.ResolveReference(ref).String()
}
