package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Schema creates the results table. Migrate applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS chess_results (
	game_id     TEXT PRIMARY KEY,
	area_id     TEXT NOT NULL,
	white_id    TEXT NOT NULL,
	white_name  TEXT NOT NULL DEFAULT '',
	black_id    TEXT NOT NULL,
	black_name  TEXT NOT NULL DEFAULT '',
	winner_id   TEXT NOT NULL DEFAULT '',
	result      TEXT NOT NULL,
	method      TEXT NOT NULL,
	moves       JSONB NOT NULL DEFAULT '[]'::jsonb,
	pgn         TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS chess_results_white_idx ON chess_results (white_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS chess_results_black_idx ON chess_results (black_id, ended_at DESC);
`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate creates the results table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate chess_results: %w", err)
	}
	return nil
}

// SaveResult upserts a final game result.
func (r *PostgresRepository) SaveResult(ctx context.Context, res *Result) error {
	if res == nil {
		return fmt.Errorf("nil game result")
	}
	moves, err := json.Marshal(res.Moves)
	if err != nil {
		return fmt.Errorf("marshal moves: %w", err)
	}

	const q = `INSERT INTO chess_results (
		game_id, area_id, white_id, white_name, black_id, black_name,
		winner_id, result, method, moves, pgn, started_at, ended_at, duration_ms
	  ) VALUES (
		$1,$2,$3,$4,$5,$6,$7,$8,$9,$10::jsonb,$11,$12,$13,$14
	  ) ON CONFLICT (game_id) DO UPDATE SET
		area_id=EXCLUDED.area_id,
		white_id=EXCLUDED.white_id,
		white_name=EXCLUDED.white_name,
		black_id=EXCLUDED.black_id,
		black_name=EXCLUDED.black_name,
		winner_id=EXCLUDED.winner_id,
		result=EXCLUDED.result,
		method=EXCLUDED.method,
		moves=EXCLUDED.moves,
		pgn=EXCLUDED.pgn,
		started_at=EXCLUDED.started_at,
		ended_at=EXCLUDED.ended_at,
		duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		res.GameID, res.AreaID,
		res.WhiteID, res.WhiteName,
		res.BlackID, res.BlackName,
		res.WinnerID, string(res.Outcome), string(res.Method),
		string(moves), BuildPGN(res),
		res.StartedAt, res.EndedAt, res.Duration().Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("upsert chess result: %w", err)
	}
	return nil
}

const selectResult = `
	SELECT game_id, area_id, white_id, white_name, black_id, black_name,
		winner_id, result, method, moves, started_at, ended_at
	FROM chess_results`

func (r *PostgresRepository) RecentByPlayer(ctx context.Context, playerID string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		selectResult+` WHERE white_id = $1 OR black_id = $1 ORDER BY ended_at DESC LIMIT $2`,
		playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("select chess results: %w", err)
	}
	defer rows.Close()

	out := make([]*Result, 0, limit)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chess results: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, gameID string) (*Result, error) {
	row := r.db.QueryRowContext(ctx, selectResult+` WHERE game_id = $1`, gameID)
	res, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*Result, error) {
	var (
		res       Result
		outcome   string
		method    string
		movesJSON []byte
	)
	if err := s.Scan(
		&res.GameID, &res.AreaID,
		&res.WhiteID, &res.WhiteName,
		&res.BlackID, &res.BlackName,
		&res.WinnerID, &outcome, &method,
		&movesJSON, &res.StartedAt, &res.EndedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan chess result: %w", err)
	}
	res.Outcome = Outcome(outcome)
	res.Method = Method(method)
	if len(movesJSON) > 0 {
		if err := json.Unmarshal(movesJSON, &res.Moves); err != nil {
			return nil, fmt.Errorf("decode moves: %w", err)
		}
	}
	return &res, nil
}
