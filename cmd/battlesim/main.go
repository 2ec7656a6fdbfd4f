// Command battlesim plays battles with the greedy autoplayer and reports
// the outcomes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/config"
	"github.com/magefree/deckbattle-server-go/internal/game/battle"
	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/replay"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
	"github.com/magefree/deckbattle-server-go/internal/sim"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	battles    = flag.Int("n", 100, "number of battles to simulate")
	parallel   = flag.Int("parallel", 4, "battles run at once")
	maxTurns   = flag.Int("max-turns", sim.DefaultMaxTurns, "turns before a battle is abandoned")
	seed       = flag.Uint64("seed", 0, "random seed, overrides battle.seed when set")
	rewards    = flag.Int("rewards", 0, "reward picks added to the starter deck")
	replayDir  = flag.String("replay-dir", "", "record one battle, verify it and save it here")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := zap.NewDevelopment()
	if cfg.Logging.Format == "json" {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}
	src := rng.NewLocked(rng.New(cfg.Battle.Seed))
	engine, err := battle.NewEngine(cfg.Battle.Rules(), nil, nil, src, logger.Named("engine").WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	if err != nil {
		logger.Fatal("failed to create battle engine", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *replayDir != "" {
		if err := recordReplay(ctx, cfg, *replayDir, logger); err != nil {
			logger.Fatal("replay check failed", zap.Error(err))
		}
	}

	runner := sim.NewRunner(engine, *maxTurns, logger)
	summaries, err := runner.RunMany(ctx, *battles, *parallel, func() ([]cards.Card, error) {
		starter, err := engine.Cards().StarterDeck()
		if err != nil {
			return nil, err
		}
		for i := 0; i < *rewards; i++ {
			picks, err := engine.Cards().RewardCards(src)
			if err != nil {
				return nil, err
			}
			starter = append(starter, picks[0])
		}
		return starter, nil
	})
	if err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	tally := sim.Tally(summaries)
	turns := 0
	byEnemy := make(map[string][2]int)
	for _, s := range summaries {
		turns += s.Turns
		rec := byEnemy[s.EnemyName]
		rec[1]++
		if s.Outcome == battle.OutcomeWon {
			rec[0]++
		}
		byEnemy[s.EnemyName] = rec
	}

	logger.Info("simulation finished",
		zap.Int("battles", len(summaries)),
		zap.Int("won", tally[battle.OutcomeWon]),
		zap.Int("lost", tally[battle.OutcomeLost]),
		zap.Int("abandoned", tally[battle.OutcomeAbandoned]),
		zap.Float64("avg_turns", float64(turns)/float64(max(len(summaries), 1))),
		zap.Uint64("seed", cfg.Battle.Seed),
	)

	names := make([]string, 0, len(byEnemy))
	for name := range byEnemy {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rec := byEnemy[name]
		logger.Info("enemy record",
			zap.String("enemy", name),
			zap.Int("won", rec[0]),
			zap.Int("fought", rec[1]),
		)
	}
}

// recordReplay plays one greedy battle under a replay recorder, checks
// that it replays to the same state and saves it.
func recordReplay(ctx context.Context, cfg *config.Config, dir string, logger *zap.Logger) error {
	seed := cfg.Battle.Seed
	if seed == 0 {
		seed = 1
	}
	deck := []int{1, 1, 1, 1, 6, 6, 6, 6, 3, 8}
	enemyID := int(seed%5) + 1

	rec, err := replay.Start(seed, cfg.Battle.Rules(), deck, enemyID, logger.Named("replay"))
	if err != nil {
		return err
	}
	if err := sim.Record(ctx, rec, *maxTurns); err != nil {
		return err
	}
	r := rec.Replay()
	if _, err := replay.Verify(ctx, r, logger.Named("replay")); err != nil {
		return err
	}
	if err := r.SaveToFile(dir); err != nil {
		return err
	}
	logger.Info("replay saved",
		zap.String("file", filepath.Join(dir, r.BattleID+".replay")),
		zap.Int("actions", r.Size()),
	)
	return nil
}
