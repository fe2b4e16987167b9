package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/config"
	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/infrastructure/account/identity"
	"github.com/arieljmnz/quiniela-backend/internal/infrastructure/repository/memory"
	"github.com/arieljmnz/quiniela-backend/internal/infrastructure/repository/postgres"
	"github.com/arieljmnz/quiniela-backend/internal/interfaces/httpapi"
	"github.com/arieljmnz/quiniela-backend/internal/platform/cache"
	idgen "github.com/arieljmnz/quiniela-backend/internal/platform/id"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
	"github.com/arieljmnz/quiniela-backend/internal/platform/resilience"
	"github.com/arieljmnz/quiniela-backend/internal/usecase"

	"github.com/arieljmnz/quiniela-backend/external/apifootball"
)

type repositories struct {
	users       user.Repository
	matches     match.Repository
	pools       pool.Repository
	predictions prediction.Repository
	payments    payment.Repository
	directory   identity.UserDirectory
}

// NewHTTPServer wires repositories, services and the router into a server.
// The returned cleanup closes the database pool when one was opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger, accessLogger *slog.Logger) (*http.Server, func(context.Context) error, error) {
	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cacheStore := cache.NewStore(cfg.CacheTTL)

	apiKey := ""
	if cfg.APIFootballEnabled {
		apiKey = cfg.APIFootballKey
	}
	provider := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL: cfg.APIFootballBaseURL,
		APIKey:  apiKey,
		Timeout: cfg.APIFootballTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailureCount,
			OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
		},
	})

	leagues := make([]usecase.IngestionLeague, 0, len(cfg.Leagues))
	for _, l := range cfg.Leagues {
		leagues = append(leagues, usecase.IngestionLeague{
			Name:   l.Name,
			RefID:  l.RefID,
			Season: cfg.APIFootballSeason,
		})
	}

	ingestionSvc := usecase.NewIngestionService(provider, repos.matches, cacheStore, logger, leagues, apifootball.SampleMatches(time.Now().UTC()))
	poolSvc := usecase.NewPoolService(repos.pools, repos.matches, repos.payments, idgen.NewRandomGenerator("q"), logger)
	predictionSvc := usecase.NewPredictionService(repos.predictions, repos.pools, idgen.NewRandomGenerator("pred"), logger)
	resultSvc := usecase.NewResultService(repos.matches, repos.predictions, cacheStore, logger)
	statsSvc := usecase.NewStatsService(repos.users, repos.pools, repos.predictions, repos.payments, cacheStore, logger)
	paymentSvc := usecase.NewPaymentService(repos.payments, logger)
	refreshSvc := usecase.NewRefreshService(statsSvc, repos.users, cacheStore, logger)

	verifier := buildTokenVerifier(cfg, repos.directory, logger)

	handler := httpapi.NewHandler(
		ingestionSvc,
		poolSvc,
		predictionSvc,
		resultSvc,
		statsSvc,
		paymentSvc,
		refreshSvc,
		accessLogger,
	)
	router := httpapi.NewRouter(handler, verifier, accessLogger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup(context.Background())
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func(context.Context) error, error) {
	if cfg.DBURL == "" {
		seed := memory.DefaultSeed(time.Now().UTC())
		userRepo := memory.NewUserRepository(seed.Users)
		logger.Info("using in-memory repositories", "reason", "DB_URL empty", "seed_users", len(seed.Users))
		return repositories{
			users:       userRepo,
			matches:     memory.NewMatchRepository(seed.Matches),
			pools:       memory.NewPoolRepository(seed.Pools),
			predictions: memory.NewPredictionRepository(seed.Predictions),
			payments:    memory.NewPaymentRepository(seed.Payments),
			directory:   userRepo,
		}, func(context.Context) error { return nil }, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("open database: %w", err)
	}
	logger.Info("using postgres repositories", "db", dbNameFromURL(cfg.DBURL))

	userRepo := postgres.NewUserRepository(db)
	return repositories{
		users:       userRepo,
		matches:     postgres.NewMatchRepository(db),
		pools:       postgres.NewPoolRepository(db),
		predictions: postgres.NewPredictionRepository(db),
		payments:    postgres.NewPaymentRepository(db),
		directory:   userRepo,
	}, func(context.Context) error { return db.Close() }, nil
}

func buildTokenVerifier(cfg config.Config, directory identity.UserDirectory, logger *logging.Logger) httpapi.TokenVerifier {
	if cfg.AuthIntrospectURL != "" {
		return identity.NewClient(&http.Client{Timeout: cfg.AuthTimeout}, cfg.AuthIntrospectURL, directory, logger)
	}
	logger.Warn("auth introspection not configured, accepting dev tokens only")
	return identity.NewStaticVerifier(directory)
}
