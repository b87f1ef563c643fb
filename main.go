package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/activity-server/internal/achievements"
	"github.com/robalobadob/wordle/apps/activity-server/internal/config"
	"github.com/robalobadob/wordle/apps/activity-server/internal/discord"
	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
	"github.com/robalobadob/wordle/apps/activity-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/activity-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/activity-server/internal/store"
	"github.com/robalobadob/wordle/apps/activity-server/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	if err := words.Init(cfg.WordsAnswersFile, cfg.WordsAllowedFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	list := words.Default()
	answers, allowed := list.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	ctx := context.Background()
	kv, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}

	eng := game.NewEngine(list)
	eng.MinGuessesForHint = cfg.HintMinGuesses

	srv := httpserver.New(httpserver.Deps{
		Words:        list,
		Repo:         store.NewRepo(kv),
		Engine:       eng,
		Achievements: achievements.NewEngine(cfg.Location()),
		Discord:      discord.NewClient(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordAPIBase),
		Metrics:      metrics.New("wordle"),
	}, httpserver.Options{
		JWTSecret:        cfg.JWTSecret,
		JWTTTL:           cfg.JWTTTL(),
		CookieName:       cfg.CookieName,
		ClientOrigin:     cfg.ClientOrigin,
		Production:       cfg.Production,
		LeaderboardLimit: cfg.LeaderboardLimit,
	})

	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting activity-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; state is lost on restart")
		return store.NewMemoryStore(), nil
	case "postgres":
		return store.OpenPostgres(cfg.DatabaseURL)
	default:
		return openSQLiteStore(ctx, cfg.DBPath)
	}
}
