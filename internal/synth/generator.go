package synth

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/okian/movestat/internal/domain/model"
)

// Pitch and motion constants for generated matches.
const (
	halfLength        = 52.5
	halfWidth         = 34.0
	maxStep           = 0.9 // metres per frame, about 9 m/s at 10 Hz
	possessionSpell   = 40  // mean frames between possession changes
	secondPeriodStart = 45 * 60
	ctxCheckEvery     = 1024
)

// Config controls a generated match.
type Config struct {
	MatchID         int64
	PlayersPerSide  int
	FramesPerPeriod int
	FrameDuration   float64
	// OcclusionRate is the per-frame probability that a player is missing.
	OcclusionRate float64
	// TrackSwapRate is the per-frame probability that a player's track id changes.
	TrackSwapRate float64
	// NullFrames are inserted before, between and after the periods.
	NullFrames int
	Seed       int64
}

// DefaultConfig is a small two-period match.
func DefaultConfig() Config {
	return Config{
		MatchID:         1,
		PlayersPerSide:  11,
		FramesPerPeriod: 600,
		FrameDuration:   0.1,
		OcclusionRate:   0.05,
		TrackSwapRate:   0.01,
		NullFrames:      5,
		Seed:            42,
	}
}

type walker struct {
	trackable int64
	side      model.Side
	x, y      float64
	trackID   int64
}

// Generate builds a synthetic match: players random-walk on the pitch,
// possession passes between players, and tracking drops out or
// re-identifies players at the configured rates.
func Generate(ctx context.Context, cfg Config) (model.Match, error) {
	if cfg.PlayersPerSide < 1 || cfg.FramesPerPeriod < 1 || cfg.FrameDuration <= 0 {
		return model.Match{}, fmt.Errorf("synth: invalid config %+v", cfg)
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic fixtures

	var specs []PlayerSpec
	walkers := make([]*walker, 0, 2*cfg.PlayersPerSide)
	nextTrack := int64(1000)
	for i := 0; i < 2*cfg.PlayersPerSide; i++ {
		away := i >= cfg.PlayersPerSide
		w := &walker{
			trackable: int64(100 + i),
			side:      model.SideHome,
			x:         (rng.Float64()*2 - 1) * halfLength,
			y:         (rng.Float64()*2 - 1) * halfWidth,
			trackID:   nextTrack,
		}
		if away {
			w.side = model.SideAway
		}
		nextTrack++
		walkers = append(walkers, w)
		specs = append(specs, PlayerSpec{
			Trackable: w.trackable,
			Away:      away,
			First:     fmt.Sprintf("Player%d", i+1),
			Last:      w.side.String(),
		})
	}

	match := model.Match{ID: cfg.MatchID, Meta: Meta(cfg.MatchID, specs...)}
	frameNo := int64(0)
	appendNull := func() {
		for i := 0; i < cfg.NullFrames; i++ {
			match.Frames = append(match.Frames, NullFrame(frameNo))
			frameNo++
		}
	}

	holder := walkers[rng.Intn(len(walkers))]
	appendNull()
	for period := 1; period <= 2; period++ {
		base := 0.0
		if period == 2 {
			base = secondPeriodStart
		}
		for i := 0; i < cfg.FramesPerPeriod; i++ {
			if i%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return model.Match{}, fmt.Errorf("synth: %w", err)
				}
			}
			if rng.Intn(possessionSpell) == 0 {
				holder = walkers[rng.Intn(len(walkers))]
			}
			b := Frame(frameNo, period, FormatClock(base+float64(i)*cfg.FrameDuration))
			if rng.Intn(10) > 0 {
				b.Holder(holder.trackable, holder.side.String()+" team")
			}
			b.Ball(BallObject, holder.x, holder.y, rng.Float64())
			for _, w := range walkers {
				w.x = clamp(w.x+(rng.Float64()*2-1)*maxStep, halfLength)
				w.y = clamp(w.y+(rng.Float64()*2-1)*maxStep, halfWidth)
				if rng.Float64() < cfg.TrackSwapRate {
					w.trackID = nextTrack
					nextTrack++
				}
				if rng.Float64() < cfg.OcclusionRate {
					continue
				}
				b.Player(w.trackable, round2(w.x), round2(w.y), w.trackID)
			}
			match.Frames = append(match.Frames, b.Build())
			frameNo++
		}
		appendNull()
	}
	return match, nil
}

// FormatClock renders seconds as "MM:SS.cc".
func FormatClock(sec float64) string {
	cs := int64(math.Round(sec * 100))
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
