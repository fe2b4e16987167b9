package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/cache"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

// StatsService derives leaderboards, pool history and per-user breakdowns
// from stored predictions. Every aggregate is cached and invalidated when a
// result lands.
type StatsService struct {
	userRepo       user.Repository
	poolRepo       pool.Repository
	predictionRepo prediction.Repository
	paymentRepo    payment.Repository
	cache          *cache.Store
	logger         *logging.Logger
}

func NewStatsService(
	userRepo user.Repository,
	poolRepo pool.Repository,
	predictionRepo prediction.Repository,
	paymentRepo payment.Repository,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		userRepo:       userRepo,
		poolRepo:       poolRepo,
		predictionRepo: predictionRepo,
		paymentRepo:    paymentRepo,
		cache:          cacheStore,
		logger:         logger,
	}
}

type LeaderboardEntry struct {
	Rank          int              `json:"rank"`
	UserID        string           `json:"userId"`
	Name          string           `json:"name"`
	TotalPoints   int              `json:"totalPoints"`
	Predictions   int              `json:"predictions"`
	CorrectHits   int              `json:"correctHits"`
	ExactHits     int              `json:"exactHits"`
	PoolsPlayed   int              `json:"poolsPlayed"`
	PoolsWon      int              `json:"poolsWon"`
	Accuracy      float64          `json:"accuracy"`
	WinRate       float64          `json:"winRate"`
	AveragePoints float64          `json:"averagePoints"`
	BestPool      *PoolPerformance `json:"bestPool,omitempty"`
	WorstPool     *PoolPerformance `json:"worstPool,omitempty"`
}

// PoolPerformance is one user's point sum inside a single pool.
type PoolPerformance struct {
	PoolID string `json:"poolId"`
	Title  string `json:"title"`
	Points int    `json:"points"`
}

type GlobalStats struct {
	TotalUsers       int                `json:"totalUsers"`
	TotalPools       int                `json:"totalPools"`
	FinishedPools    int                `json:"finishedPools"`
	TotalPredictions int                `json:"totalPredictions"`
	AveragePoints    float64            `json:"averagePoints"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
	Leaders          []string           `json:"leaders"`
}

// GlobalStats returns the all-time leaderboard. Ranking sorts by total
// points descending and is stable, so equal users keep repository order and
// share a rank.
func (s *StatsService) GlobalStats(ctx context.Context) (GlobalStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GlobalStats")
	defer span.End()

	loaded, err := s.cache.GetOrLoad(ctx, cache.Key("stats", "global"), func(ctx context.Context) (any, error) {
		return s.buildGlobalStats(ctx)
	})
	if err != nil {
		return GlobalStats{}, err
	}
	stats, ok := loaded.(GlobalStats)
	if !ok {
		return GlobalStats{}, fmt.Errorf("unexpected cached global stats type %T", loaded)
	}
	return stats, nil
}

func (s *StatsService) buildGlobalStats(ctx context.Context) (GlobalStats, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return GlobalStats{}, fmt.Errorf("list users: %w", err)
	}
	pools, err := s.poolRepo.List(ctx)
	if err != nil {
		return GlobalStats{}, fmt.Errorf("list pools: %w", err)
	}

	winsByUser, finishedPools, err := s.poolWins(ctx, pools)
	if err != nil {
		return GlobalStats{}, err
	}

	poolTitles := make(map[string]string, len(pools))
	playedByUser := make(map[string]int)
	for _, p := range pools {
		poolTitles[p.ID] = p.Title
		for _, participant := range p.Participants {
			playedByUser[participant]++
		}
	}

	stats := GlobalStats{
		TotalPools:    len(pools),
		FinishedPools: finishedPools,
		Leaderboard:   make([]LeaderboardEntry, 0, len(users)),
	}
	totalPoints := 0
	for _, u := range users {
		if u.IsAdmin() {
			continue
		}
		stats.TotalUsers++
		predictions, err := s.predictionRepo.ListByUser(ctx, u.ID)
		if err != nil {
			return GlobalStats{}, fmt.Errorf("list predictions for user %s: %w", u.ID, err)
		}
		entry := LeaderboardEntry{
			UserID:      u.ID,
			Name:        u.Name,
			PoolsPlayed: playedByUser[u.ID],
			PoolsWon:    winsByUser[u.ID],
		}
		pointsByPool := make(map[string]int)
		for _, p := range predictions {
			entry.Predictions++
			if !p.Scored {
				continue
			}
			entry.TotalPoints += p.Points
			pointsByPool[p.PoolID] += p.Points
			if p.Points > 0 {
				entry.CorrectHits++
			}
			if p.Points == PointsExactScore {
				entry.ExactHits++
			}
		}
		entry.Accuracy = safePercent(entry.CorrectHits, entry.Predictions)
		entry.WinRate = safePercent(entry.PoolsWon, entry.PoolsPlayed)
		entry.AveragePoints = safeRatio(entry.TotalPoints, entry.Predictions)
		entry.BestPool, entry.WorstPool = poolExtremes(pointsByPool, poolTitles)
		totalPoints += entry.TotalPoints
		stats.TotalPredictions += entry.Predictions
		stats.Leaderboard = append(stats.Leaderboard, entry)
	}
	stats.AveragePoints = safeRatio(totalPoints, stats.TotalPredictions)

	sort.SliceStable(stats.Leaderboard, func(i, j int) bool {
		return stats.Leaderboard[i].TotalPoints > stats.Leaderboard[j].TotalPoints
	})
	for idx := range stats.Leaderboard {
		if idx > 0 && stats.Leaderboard[idx].TotalPoints == stats.Leaderboard[idx-1].TotalPoints {
			stats.Leaderboard[idx].Rank = stats.Leaderboard[idx-1].Rank
		} else {
			stats.Leaderboard[idx].Rank = idx + 1
		}
	}
	for _, entry := range stats.Leaderboard {
		if entry.Rank != 1 {
			break
		}
		stats.Leaders = append(stats.Leaders, entry.UserID)
	}
	return stats, nil
}

type PoolWinner struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// PoolStanding is one user's line in a pool ranking.
type PoolStanding struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	TotalPoints int    `json:"totalPoints"`
	ExactHits   int    `json:"exactHits"`
}

type PoolHistoryEntry struct {
	PoolID       string         `json:"poolId"`
	Title        string         `json:"title"`
	Week         int            `json:"week"`
	Year         int            `json:"year"`
	Status       string         `json:"status"`
	Participants int            `json:"participants"`
	Predictions  int            `json:"predictions"`
	TopScore     int            `json:"topScore"`
	Standings    []PoolStanding `json:"standings"`
	Winners      []PoolWinner   `json:"winners,omitempty"`
}

// PoolsHistory lists every pool newest first. Every entry carries the full
// points ranking and prediction count whatever the pool status; finished
// pools additionally name their winners, and a points tie produces several.
func (s *StatsService) PoolsHistory(ctx context.Context) ([]PoolHistoryEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.PoolsHistory")
	defer span.End()

	loaded, err := s.cache.GetOrLoad(ctx, cache.Key("stats", "history"), func(ctx context.Context) (any, error) {
		return s.buildPoolsHistory(ctx)
	})
	if err != nil {
		return nil, err
	}
	history, ok := loaded.([]PoolHistoryEntry)
	if !ok {
		return nil, fmt.Errorf("unexpected cached pool history type %T", loaded)
	}
	return history, nil
}

func (s *StatsService) buildPoolsHistory(ctx context.Context) ([]PoolHistoryEntry, error) {
	pools, err := s.poolRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].CreatedAt.After(pools[j].CreatedAt)
	})

	names, err := s.userNames(ctx)
	if err != nil {
		return nil, err
	}

	history := make([]PoolHistoryEntry, 0, len(pools))
	for _, p := range pools {
		entry := PoolHistoryEntry{
			PoolID:       p.ID,
			Title:        p.Title,
			Week:         p.Week,
			Year:         p.Year,
			Status:       pool.NormalizeStatus(p.Status),
			Participants: len(p.Participants),
		}
		standings, predictionCount, err := s.poolStandings(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for idx := range standings {
			standings[idx].Name = names[standings[idx].UserID]
		}
		entry.Standings = standings
		entry.Predictions = predictionCount
		if len(standings) > 0 {
			entry.TopScore = standings[0].TotalPoints
		}
		if entry.Status == pool.StatusFinished {
			winners, err := s.poolWinners(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			for idx := range winners {
				winners[idx].Name = names[winners[idx].UserID]
			}
			entry.Winners = winners
		}
		history = append(history, entry)
	}
	return history, nil
}

// poolStandings ranks every user who predicted in the pool by their scored
// point sum, highest first, ties resolved by the smaller user id. It also
// returns how many predictions the pool received.
func (s *StatsService) poolStandings(ctx context.Context, poolID string) ([]PoolStanding, int, error) {
	predictions, err := s.predictionRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, 0, fmt.Errorf("list predictions for pool %s: %w", poolID, err)
	}
	byUser := make(map[string]*PoolStanding)
	order := make([]string, 0, len(predictions))
	for _, p := range predictions {
		st, ok := byUser[p.UserID]
		if !ok {
			st = &PoolStanding{UserID: p.UserID}
			byUser[p.UserID] = st
			order = append(order, p.UserID)
		}
		if !p.Scored {
			continue
		}
		st.TotalPoints += p.Points
		if p.Points == PointsExactScore {
			st.ExactHits++
		}
	}

	standings := make([]PoolStanding, 0, len(order))
	for _, userID := range order {
		standings = append(standings, *byUser[userID])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalPoints != standings[j].TotalPoints {
			return standings[i].TotalPoints > standings[j].TotalPoints
		}
		return standings[i].UserID < standings[j].UserID
	})
	return standings, len(predictions), nil
}

// poolWinners computes the tie-aware winner set of one pool from scored
// predictions only.
func (s *StatsService) poolWinners(ctx context.Context, poolID string) ([]PoolWinner, error) {
	predictions, err := s.predictionRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list predictions for pool %s: %w", poolID, err)
	}
	pointsByUser := make(map[string]int)
	for _, p := range predictions {
		if !p.Scored {
			continue
		}
		pointsByUser[p.UserID] += p.Points
	}
	if len(pointsByUser) == 0 {
		return nil, nil
	}

	best := -1
	for _, points := range pointsByUser {
		if points > best {
			best = points
		}
	}
	winners := make([]PoolWinner, 0, 1)
	for userID, points := range pointsByUser {
		if points == best {
			winners = append(winners, PoolWinner{UserID: userID, Points: points})
		}
	}
	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].UserID < winners[j].UserID
	})
	return winners, nil
}

func (s *StatsService) poolWins(ctx context.Context, pools []pool.Pool) (map[string]int, int, error) {
	wins := make(map[string]int)
	finished := 0
	for _, p := range pools {
		if pool.NormalizeStatus(p.Status) != pool.StatusFinished {
			continue
		}
		finished++
		winners, err := s.poolWinners(ctx, p.ID)
		if err != nil {
			return nil, 0, err
		}
		for _, w := range winners {
			wins[w.UserID]++
		}
	}
	return wins, finished, nil
}

// MonthKey identifies a calendar month without collapsing January of two
// different years into one bucket.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func MonthKeyOf(t time.Time) MonthKey {
	t = t.UTC()
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

type MonthlyStats struct {
	Month       MonthKey `json:"month"`
	Points      int      `json:"points"`
	Predictions int      `json:"predictions"`
}

type UserDetailedStats struct {
	UserID        string           `json:"userId"`
	Name          string           `json:"name"`
	TotalPoints   int              `json:"totalPoints"`
	Predictions   int              `json:"predictions"`
	Scored        int              `json:"scored"`
	CorrectHits   int              `json:"correctHits"`
	ExactHits     int              `json:"exactHits"`
	PoolsPlayed   int              `json:"poolsPlayed"`
	PoolsWon      int              `json:"poolsWon"`
	TotalWinnings float64          `json:"totalWinnings"`
	AveragePoints float64          `json:"averagePoints"`
	Accuracy      float64          `json:"accuracy"`
	WinRate       float64          `json:"winRate"`
	BestPool      *PoolPerformance `json:"bestPool,omitempty"`
	WorstPool     *PoolPerformance `json:"worstPool,omitempty"`
	Histogram     map[int]int      `json:"histogram"`
	Monthly       []MonthlyStats   `json:"monthly"`
}

// UserStats returns the per-user breakdown. The histogram always carries a
// bucket for every awardable point value, including empty ones.
func (s *StatsService) UserStats(ctx context.Context, userID string) (UserDetailedStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.UserStats")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserDetailedStats{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	loaded, err := s.cache.GetOrLoad(ctx, cache.Key("stats", "user", userID), func(ctx context.Context) (any, error) {
		return s.buildUserStats(ctx, userID)
	})
	if err != nil {
		return UserDetailedStats{}, err
	}
	stats, ok := loaded.(UserDetailedStats)
	if !ok {
		return UserDetailedStats{}, fmt.Errorf("unexpected cached user stats type %T", loaded)
	}
	return stats, nil
}

func (s *StatsService) buildUserStats(ctx context.Context, userID string) (UserDetailedStats, error) {
	u, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return UserDetailedStats{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	if !found {
		return UserDetailedStats{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	predictions, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return UserDetailedStats{}, fmt.Errorf("list predictions for user %s: %w", userID, err)
	}
	pools, err := s.poolRepo.List(ctx)
	if err != nil {
		return UserDetailedStats{}, fmt.Errorf("list pools: %w", err)
	}
	wins, _, err := s.poolWins(ctx, pools)
	if err != nil {
		return UserDetailedStats{}, err
	}
	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return UserDetailedStats{}, fmt.Errorf("list payments for user %s: %w", userID, err)
	}

	stats := UserDetailedStats{
		UserID:    u.ID,
		Name:      u.Name,
		PoolsWon:  wins[u.ID],
		Histogram: make(map[int]int, len(PointScale)),
	}
	for _, value := range PointScale {
		stats.Histogram[value] = 0
	}
	poolTitles := make(map[string]string, len(pools))
	for _, p := range pools {
		poolTitles[p.ID] = p.Title
		for _, participant := range p.Participants {
			if participant == u.ID {
				stats.PoolsPlayed++
			}
		}
	}

	monthly := make(map[MonthKey]*MonthlyStats)
	pointsByPool := make(map[string]int)
	for _, p := range predictions {
		stats.Predictions++
		key := MonthKeyOf(p.CreatedAt)
		bucket, ok := monthly[key]
		if !ok {
			bucket = &MonthlyStats{Month: key}
			monthly[key] = bucket
		}
		bucket.Predictions++
		if !p.Scored {
			continue
		}
		stats.Scored++
		stats.TotalPoints += p.Points
		stats.Histogram[p.Points]++
		pointsByPool[p.PoolID] += p.Points
		bucket.Points += p.Points
		if p.Points > 0 {
			stats.CorrectHits++
		}
		if p.Points == PointsExactScore {
			stats.ExactHits++
		}
	}
	stats.AveragePoints = safeRatio(stats.TotalPoints, stats.Predictions)
	stats.Accuracy = safePercent(stats.CorrectHits, stats.Predictions)
	stats.WinRate = safePercent(stats.PoolsWon, stats.PoolsPlayed)
	stats.BestPool, stats.WorstPool = poolExtremes(pointsByPool, poolTitles)
	for _, pay := range payments {
		if pay.ToUser == u.ID && pay.Status == payment.StatusPaid {
			stats.TotalWinnings += pay.Amount
		}
	}

	stats.Monthly = make([]MonthlyStats, 0, len(monthly))
	for _, bucket := range monthly {
		stats.Monthly = append(stats.Monthly, *bucket)
	}
	sort.SliceStable(stats.Monthly, func(i, j int) bool {
		return stats.Monthly[i].Month.Before(stats.Monthly[j].Month)
	})
	return stats, nil
}

type UserComparison struct {
	Users   []UserDetailedStats `json:"users"`
	Skipped []string            `json:"skipped,omitempty"`
	Metrics []MetricRanking     `json:"metrics"`
}

// MetricRanking orders the compared users descending by one metric. Ties
// keep the caller's input order.
type MetricRanking struct {
	Metric  string               `json:"metric"`
	Ranking []MetricRankingEntry `json:"ranking"`
}

type MetricRankingEntry struct {
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
}

var comparisonMetrics = []struct {
	name  string
	value func(UserDetailedStats) float64
}{
	{"totalPoints", func(s UserDetailedStats) float64 { return float64(s.TotalPoints) }},
	{"accuracy", func(s UserDetailedStats) float64 { return s.Accuracy }},
	{"exactScores", func(s UserDetailedStats) float64 { return float64(s.ExactHits) }},
	{"averagePoints", func(s UserDetailedStats) float64 { return s.AveragePoints }},
	{"quinielasWon", func(s UserDetailedStats) float64 { return float64(s.PoolsWon) }},
}

// CompareUsers builds per-metric rankings for the given users. Ids that
// cannot be resolved are skipped and reported, not fatal.
func (s *StatsService) CompareUsers(ctx context.Context, userIDs []string) (UserComparison, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.CompareUsers")
	defer span.End()

	seen := make(map[string]bool, len(userIDs))
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return UserComparison{}, fmt.Errorf("%w: at least two distinct user ids are required", ErrInvalidInput)
	}

	comparison := UserComparison{Users: make([]UserDetailedStats, 0, len(ids))}
	for _, id := range ids {
		stats, err := s.UserStats(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping user in comparison", "user_id", id, "error", err)
			comparison.Skipped = append(comparison.Skipped, id)
			continue
		}
		comparison.Users = append(comparison.Users, stats)
	}

	comparison.Metrics = make([]MetricRanking, 0, len(comparisonMetrics))
	for _, metric := range comparisonMetrics {
		ranking := make([]MetricRankingEntry, 0, len(comparison.Users))
		for _, u := range comparison.Users {
			ranking = append(ranking, MetricRankingEntry{UserID: u.UserID, Name: u.Name, Value: metric.value(u)})
		}
		sort.SliceStable(ranking, func(i, j int) bool {
			return ranking[i].Value > ranking[j].Value
		})
		comparison.Metrics = append(comparison.Metrics, MetricRanking{Metric: metric.name, Ranking: ranking})
	}
	return comparison, nil
}

func (s *StatsService) userNames(ctx context.Context) (map[string]string, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// safeRatio guards the division so empty denominators yield zero instead of
// NaN.
func safeRatio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func safePercent(numerator, denominator int) float64 {
	return safeRatio(numerator, denominator) * 100
}

// poolExtremes returns the user's best and worst pool by point sum. Ties
// resolve to the lexically smallest pool id so repeated reads agree.
func poolExtremes(points map[string]int, titles map[string]string) (best, worst *PoolPerformance) {
	ids := make([]string, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sum := points[id]
		if best == nil || sum > best.Points {
			best = &PoolPerformance{PoolID: id, Title: titles[id], Points: sum}
		}
		if worst == nil || sum < worst.Points {
			worst = &PoolPerformance{PoolID: id, Title: titles[id], Points: sum}
		}
	}
	return best, worst
}
