package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	"github.com/arieljmnz/quiniela-backend/internal/platform/cache"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

const maxConcurrentLeagueFetches = 4

// Match list origins. Every weekly result names where its matches came from
// so callers never have to guess whether they are looking at live data.
const (
	OriginProvider = "provider"
	OriginFallback = "fallback"
	OriginEmpty    = "empty"
)

// WeeklyFixtureProvider is the slice of the football data API the ingestion
// flow needs. external/apifootball implements it.
type WeeklyFixtureProvider interface {
	FetchFixturesByLeague(ctx context.Context, leagueRefID int64, season int, from, to time.Time) ([]ExternalFixture, error)
	Ready() bool
	Ping(ctx context.Context) error
}

// QuotaReporter is implemented by providers that meter daily request usage.
type QuotaReporter interface {
	Quota(ctx context.Context) (used, limit int, err error)
}

type ExternalFixture struct {
	ExternalID int64
	LeagueName string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int
}

// IngestionLeague is one league the weekly fetch covers. Slice order is
// priority order: on duplicate fixture ids the earlier league wins, and
// grouped output lists leagues in this order.
type IngestionLeague struct {
	Name   string
	RefID  int64
	Season int
}

type WeeklyMatchesResult struct {
	Matches []match.Match       `json:"matches"`
	Origin  string              `json:"origin"`
	From    time.Time           `json:"from"`
	To      time.Time           `json:"to"`
	Leagues []LeagueFetchStatus `json:"leagues"`
}

type LeagueFetchStatus struct {
	League string `json:"league"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

type LeagueGroup struct {
	League  string        `json:"league"`
	Matches []match.Match `json:"matches"`
}

type ProviderStatusResult struct {
	Configured    bool   `json:"configured"`
	Reachable     bool   `json:"reachable"`
	Message       string `json:"message,omitempty"`
	RequestsUsed  int    `json:"requestsUsed,omitempty"`
	RequestsLimit int    `json:"requestsLimit,omitempty"`
}

type IngestionService struct {
	provider  WeeklyFixtureProvider
	matchRepo match.Repository
	cache     *cache.Store
	logger    *logging.Logger
	leagues   []IngestionLeague
	samples   []match.Match
	now       func() time.Time
}

func NewIngestionService(
	provider WeeklyFixtureProvider,
	matchRepo match.Repository,
	cacheStore *cache.Store,
	logger *logging.Logger,
	leagues []IngestionLeague,
	samples []match.Match,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		provider:  provider,
		matchRepo: matchRepo,
		cache:     cacheStore,
		logger:    logger,
		leagues:   leagues,
		samples:   samples,
		now:       time.Now,
	}
}

// WeekRange returns the Monday 00:00 UTC and Sunday 00:00 UTC of the ISO
// week weekOffset weeks after the one containing now. Both bounds are
// inclusive dates; offset 0 is always the week containing now.
func WeekRange(now time.Time, weekOffset int) (time.Time, time.Time) {
	now = now.UTC()
	back := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		back = 6
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -back+7*weekOffset)
	return monday, monday.AddDate(0, 0, 6)
}

type leagueFetch struct {
	league   IngestionLeague
	fixtures []ExternalFixture
	err      error
}

// WeeklyMatches returns every match of the requested ISO week across the
// configured leagues, deduplicated and sorted by kickoff. weekOffset 0 is
// the week containing today, 1 the next, and so on. Results are cached for
// the store's TTL keyed on the week.
func (s *IngestionService) WeeklyMatches(ctx context.Context, weekOffset int) (WeeklyMatchesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.WeeklyMatches")
	defer span.End()

	if weekOffset < 0 {
		return WeeklyMatchesResult{}, fmt.Errorf("%w: week offset must not be negative", ErrInvalidInput)
	}

	from, to := WeekRange(s.now(), weekOffset)
	year, week := from.ISOWeek()
	key := cache.Key("matches", "weekly", fmt.Sprintf("%d-W%02d", year, week))

	loaded, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchWeek(ctx, from, to)
	})
	if err != nil {
		return WeeklyMatchesResult{}, err
	}
	result, ok := loaded.(WeeklyMatchesResult)
	if !ok {
		return WeeklyMatchesResult{}, fmt.Errorf("unexpected cached weekly matches type %T", loaded)
	}
	return result, nil
}

func (s *IngestionService) fetchWeek(ctx context.Context, from, to time.Time) (WeeklyMatchesResult, error) {
	result := WeeklyMatchesResult{From: from, To: to}

	if s.provider == nil || !s.provider.Ready() {
		s.logger.WarnContext(ctx, "fixture provider is not configured, serving sample matches")
		return s.fallbackResult(result), nil
	}

	outcomes := make([]leagueFetch, len(s.leagues))
	workers := pool.New().WithMaxGoroutines(maxConcurrentLeagueFetches)
	for idx, lg := range s.leagues {
		idx, lg := idx, lg
		workers.Go(func() {
			fixtures, err := s.provider.FetchFixturesByLeague(ctx, lg.RefID, lg.Season, from, to)
			outcomes[idx] = leagueFetch{league: lg, fixtures: fixtures, err: err}
		})
	}
	workers.Wait()

	seen := make(map[int64]struct{}, 64)
	for _, outcome := range outcomes {
		status := LeagueFetchStatus{League: outcome.league.Name}
		if outcome.err != nil {
			status.Error = outcome.err.Error()
			s.logger.WarnContext(ctx, "weekly fixture fetch failed",
				"league", outcome.league.Name, "error", outcome.err)
			result.Leagues = append(result.Leagues, status)
			continue
		}
		for _, ext := range outcome.fixtures {
			if _, dup := seen[ext.ExternalID]; dup {
				continue
			}
			kick := ext.KickoffAt.UTC()
			if kick.Before(from) || !kick.Before(to.AddDate(0, 0, 1)) {
				continue
			}
			seen[ext.ExternalID] = struct{}{}
			m := externalToMatch(ext, outcome.league.Name)
			result.Matches = append(result.Matches, m)
			status.Count++
		}
		result.Leagues = append(result.Leagues, status)
	}

	if len(result.Matches) == 0 {
		s.logger.WarnContext(ctx, "provider returned no matches for the week, serving sample matches")
		return s.fallbackResult(result), nil
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		if !result.Matches[i].KickoffAt.Equal(result.Matches[j].KickoffAt) {
			return result.Matches[i].KickoffAt.Before(result.Matches[j].KickoffAt)
		}
		return result.Matches[i].ID < result.Matches[j].ID
	})
	result.Origin = OriginProvider

	for _, m := range result.Matches {
		if err := s.matchRepo.Upsert(ctx, m); err != nil {
			s.logger.WarnContext(ctx, "persist weekly match failed", "match_id", m.ID, "error", err)
		}
	}
	return result, nil
}

// fallbackResult serves the static samples shifted into the requested week,
// so the same offset always yields the same deterministic set.
func (s *IngestionService) fallbackResult(result WeeklyMatchesResult) WeeklyMatchesResult {
	if len(s.samples) == 0 {
		result.Origin = OriginEmpty
		result.Matches = []match.Match{}
		return result
	}

	sampleMonday, _ := WeekRange(s.samples[0].KickoffAt, 0)
	shift := result.From.Sub(sampleMonday)

	result.Origin = OriginFallback
	result.Matches = make([]match.Match, len(s.samples))
	copy(result.Matches, s.samples)
	for i := range result.Matches {
		result.Matches[i].KickoffAt = result.Matches[i].KickoffAt.Add(shift)
	}
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].KickoffAt.Before(result.Matches[j].KickoffAt)
	})
	return result
}

func externalToMatch(ext ExternalFixture, leagueName string) match.Match {
	league := strings.TrimSpace(ext.LeagueName)
	if league == "" {
		league = leagueName
	}
	return match.Match{
		ID:           fmt.Sprintf("match-%d", ext.ExternalID),
		HomeTeam:     strings.TrimSpace(ext.HomeTeam),
		AwayTeam:     strings.TrimSpace(ext.AwayTeam),
		League:       league,
		KickoffAt:    ext.KickoffAt.UTC(),
		Status:       match.NormalizeStatus(ext.Status),
		HomeScore:    ext.HomeScore,
		AwayScore:    ext.AwayScore,
		FixtureRefID: ext.ExternalID,
		Source:       match.SourceAPIWeekly,
	}
}

// GroupByLeague buckets matches by league keeping the configured league order
// first, then any leagues the configuration does not know about in the order
// they were first seen. Matches inside each bucket are ordered by kickoff.
func (s *IngestionService) GroupByLeague(matches []match.Match) []LeagueGroup {
	byLeague := make(map[string][]match.Match, len(s.leagues))
	var extras []string
	known := make(map[string]struct{}, len(s.leagues))
	for _, lg := range s.leagues {
		known[lg.Name] = struct{}{}
	}
	for _, m := range matches {
		if _, ok := byLeague[m.League]; !ok {
			if _, configured := known[m.League]; !configured {
				extras = append(extras, m.League)
			}
		}
		byLeague[m.League] = append(byLeague[m.League], m)
	}

	for name := range byLeague {
		bucket := byLeague[name]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].KickoffAt.Before(bucket[j].KickoffAt)
		})
	}

	groups := make([]LeagueGroup, 0, len(byLeague))
	for _, lg := range s.leagues {
		if bucket, ok := byLeague[lg.Name]; ok {
			groups = append(groups, LeagueGroup{League: lg.Name, Matches: bucket})
		}
	}
	for _, name := range extras {
		groups = append(groups, LeagueGroup{League: name, Matches: byLeague[name]})
	}
	return groups
}

// ProviderStatus probes the upstream API without touching the weekly cache.
func (s *IngestionService) ProviderStatus(ctx context.Context) ProviderStatusResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.ProviderStatus")
	defer span.End()

	if s.provider == nil || !s.provider.Ready() {
		return ProviderStatusResult{Configured: false, Message: "api credential is not configured"}
	}
	if reporter, ok := s.provider.(QuotaReporter); ok {
		used, limit, err := reporter.Quota(ctx)
		if err != nil {
			return ProviderStatusResult{Configured: true, Reachable: false, Message: err.Error()}
		}
		return ProviderStatusResult{Configured: true, Reachable: true, RequestsUsed: used, RequestsLimit: limit}
	}
	if err := s.provider.Ping(ctx); err != nil {
		return ProviderStatusResult{Configured: true, Reachable: false, Message: err.Error()}
	}
	return ProviderStatusResult{Configured: true, Reachable: true}
}
