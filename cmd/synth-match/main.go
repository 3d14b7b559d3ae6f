package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/movestat/internal/adapters/source"
	"github.com/okian/movestat/internal/synth"
	"github.com/okian/movestat/pkg/logger"
)

func main() {
	def := synth.DefaultConfig()
	var (
		out     = flag.String("out", "opendata/data", "Data directory to write the match into")
		id      = flag.Int64("id", def.MatchID, "Match id")
		frames  = flag.Int("frames", def.FramesPerPeriod, "Frames per period")
		players = flag.Int("players", def.PlayersPerSide, "Players per side")
		seed    = flag.Int64("seed", def.Seed, "Random seed")
		occl    = flag.Float64("occlusion", def.OcclusionRate, "Per-frame probability that a player is not tracked")
		swaps   = flag.Float64("swaps", def.TrackSwapRate, "Per-frame probability that a player's track id changes")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := def
	cfg.MatchID = *id
	cfg.FramesPerPeriod = *frames
	cfg.PlayersPerSide = *players
	cfg.Seed = *seed
	cfg.OcclusionRate = *occl
	cfg.TrackSwapRate = *swaps

	if err := generate(ctx, *out, cfg); err != nil {
		logger.Get().Error(ctx, "generate failed", logger.Error(err))
		os.Exit(1)
	}
}

func generate(ctx context.Context, dir string, cfg synth.Config) error {
	m, err := synth.Generate(ctx, cfg)
	if err != nil {
		return err
	}
	if err := source.Write(ctx, dir, m); err != nil {
		return err
	}
	logger.Get().Info(ctx, "match written",
		logger.Int64("match_id", cfg.MatchID),
		logger.Int("frames", len(m.Frames)),
		logger.String("dir", dir))
	return nil
}
