// Package locate resolves the parent→children navigation of the crawl:
// which clubs played a season, and which players sat in a club's squad.
package locate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/pprasanth/eplharvest/internal/models"
	"github.com/pprasanth/eplharvest/pkg/fetch"
	"github.com/pprasanth/eplharvest/pkg/utils"
)

var (
	teamHrefRe   = regexp.MustCompile(`/startseite/verein/(\d+)`)
	playerHrefRe = regexp.MustCompile(`^/([^/]+)/profil/spieler/(\d+)`)
)

// Locator discovers teams and players from the source's overview pages.
type Locator struct {
	fetcher     *fetch.Fetcher
	baseURL     string
	competition string
	log         *logrus.Logger
}

// New returns a Locator for one competition on one host.
func New(fetcher *fetch.Fetcher, baseURL, competition string, log *logrus.Logger) *Locator {
	return &Locator{
		fetcher:     fetcher,
		baseURL:     strings.TrimRight(baseURL, "/"),
		competition: competition,
		log:         log,
	}
}

// Teams returns the clubs of one season, in source order. Any failure
// degrades to an empty slice with a warning; the caller moves on.
func (l *Locator) Teams(ctx context.Context, season models.Season) []models.Team {
	pageURL := fmt.Sprintf("%s/premier-league/startseite/wettbewerb/%s/plus/?saison_id=%d",
		l.baseURL, l.competition, season.StartYear)

	res := l.fetcher.Fetch(ctx, pageURL)
	if !res.OK() {
		l.log.WithField("season", season.Label()).WithField("outcome", res.Kind.String()).
			Warn("no team page for season")
		return nil
	}

	// Names and hrefs are collected as parallel vectors. A nameless
	// anchor still takes its slot so later pairs stay aligned; it is
	// dropped after pairing. If the vectors still end up mismatched the
	// shorter consistent prefix wins.
	var names, hrefs []string
	res.Doc.Find("table.items td.hauptlink a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !teamHrefRe.MatchString(href) {
			return
		}
		names = append(names, utils.CleanText(s.Text()))
		hrefs = append(hrefs, href)
	})
	if len(names) != len(hrefs) {
		l.log.WithField("season", season.Label()).
			WithField("names", len(names)).WithField("urls", len(hrefs)).
			Warn("mismatched team field vectors, truncating")
	}
	n := utils.ShortestLen(names, hrefs)

	teams := make([]models.Team, 0, n)
	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		if names[i] == "" {
			continue
		}
		id := teamHrefRe.FindStringSubmatch(hrefs[i])[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		teams = append(teams, models.Team{
			ID:   id,
			Name: names[i],
			URL:  fmt.Sprintf("%s%s/saison_id/%d", l.baseURL, hrefs[i], season.StartYear),
		})
	}

	if len(teams) == 0 {
		l.log.WithField("season", season.Label()).Warn("no teams found")
	}
	return teams
}

// Players returns the squad of one club in one season, deduplicated by
// player identifier, in source order.
func (l *Locator) Players(ctx context.Context, season models.Season, team models.Team) []models.Player {
	res := l.fetcher.Fetch(ctx, team.URL)
	if !res.OK() {
		l.log.WithField("club", team.Name).WithField("outcome", res.Kind.String()).
			Warn("no squad page for club")
		return nil
	}

	var players []models.Player
	seen := make(map[string]bool)
	res.Doc.Find("table.items td.hauptlink a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := playerHrefRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		slug, id := m[1], m[2]
		if seen[id] {
			return
		}
		seen[id] = true
		players = append(players, models.Player{
			ID:   id,
			Name: utils.CleanText(s.Text()),
			Slug: slug,
		})
	})

	if len(players) == 0 {
		l.log.WithField("club", team.Name).WithField("season", season.Label()).
			Warn("no players found")
	}
	return players
}
