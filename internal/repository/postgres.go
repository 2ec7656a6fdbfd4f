package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/config"
	"github.com/magefree/deckbattle-server-go/internal/game/battle"
)

const uniqueViolation = "23505"

// NewDB opens a connection pool and verifies it with a ping.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS battle_results (
	battle_id     TEXT PRIMARY KEY,
	enemy_id      INTEGER NOT NULL,
	enemy_name    TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	turns         INTEGER NOT NULL,
	player_hp     INTEGER NOT NULL,
	player_max_hp INTEGER NOT NULL,
	deck_size     INTEGER NOT NULL,
	cards_drawn   INTEGER NOT NULL,
	reshuffles    INTEGER NOT NULL,
	stats         JSONB NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	ended_at      TIMESTAMPTZ NOT NULL
)`

// PostgresResultRepository stores results in the battle_results table.
type PostgresResultRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresResultRepository creates the table if needed.
func NewPostgresResultRepository(ctx context.Context, pool *pgxpool.Pool) (*PostgresResultRepository, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create battle_results: %w", err)
	}
	return &PostgresResultRepository{pool: pool}, nil
}

func (r *PostgresResultRepository) Save(ctx context.Context, s battle.Summary) error {
	stats, err := json.Marshal(s.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO battle_results (battle_id, enemy_id, enemy_name, outcome, turns,
			player_hp, player_max_hp, deck_size, cards_drawn, reshuffles, stats, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.BattleID, s.EnemyID, s.EnemyName, string(s.Outcome), s.Turns,
		s.PlayerHP, s.PlayerMaxHP, s.DeckSize, s.CardsDrawn, s.Reshuffles, stats, s.StartedAt, s.EndedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrResultExists
	}
	if err != nil {
		return fmt.Errorf("insert battle result %s: %w", s.BattleID, err)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (r *PostgresResultRepository) Recent(ctx context.Context, limit int) ([]battle.Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT battle_id, enemy_id, enemy_name, outcome, turns, player_hp, player_max_hp,
			deck_size, cards_drawn, reshuffles, stats, started_at, ended_at
		FROM battle_results
		ORDER BY ended_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query battle results: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (battle.Summary, error) {
		var (
			s       battle.Summary
			outcome string
			stats   []byte
		)
		err := row.Scan(&s.BattleID, &s.EnemyID, &s.EnemyName, &outcome, &s.Turns, &s.PlayerHP,
			&s.PlayerMaxHP, &s.DeckSize, &s.CardsDrawn, &s.Reshuffles, &stats, &s.StartedAt, &s.EndedAt)
		if err != nil {
			return s, err
		}
		s.Outcome = battle.Outcome(outcome)
		if err := json.Unmarshal(stats, &s.Stats); err != nil {
			return s, fmt.Errorf("decode stats for %s: %w", s.BattleID, err)
		}
		return s, nil
	})
}
