// Command recount rebuilds every denormalized vote counter and every user's
// karma from the votes table, in one transaction. The online vote path keeps
// these in sync incrementally; recount exists to repair drift after manual
// data surgery or restores.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zd8899/isitjustme/internal/adapter/postgres"
	"github.com/zd8899/isitjustme/internal/platform/config"
	"github.com/zd8899/isitjustme/internal/platform/logging"
)

const recountTimeout = 5 * time.Minute

// counterRecountSQL rewrites a target table's counters from live votes.
// Only rows whose counters drifted are touched.
const counterRecountSQL = `
UPDATE %[1]s t SET upvotes = agg.up, downvotes = agg.down, score = agg.up - agg.down, updated_at = now()
FROM (
    SELECT t2.id,
           COUNT(*) FILTER (WHERE v.value = 1)  AS up,
           COUNT(*) FILTER (WHERE v.value = -1) AS down
    FROM %[1]s t2
    LEFT JOIN votes v ON v.target_kind = '%[2]s' AND v.target_id = t2.id
    GROUP BY t2.id
) agg
WHERE agg.id = t.id
  AND (t.upvotes <> agg.up OR t.downvotes <> agg.down OR t.score <> agg.up - agg.down)`

// karmaRecountSQL runs after the counters are rebuilt, so summing target
// scores per author equals summing live votes.
const karmaRecountSQL = `
UPDATE users u SET karma = agg.karma, updated_at = now()
FROM (
    SELECT u2.id, COALESCE(SUM(s.score), 0) AS karma
    FROM users u2
    LEFT JOIN (
        SELECT author_id, score FROM posts WHERE author_id IS NOT NULL
        UNION ALL
        SELECT author_id, score FROM comments WHERE author_id IS NOT NULL
    ) s ON s.author_id = u2.id
    GROUP BY u2.id
) agg
WHERE agg.id = u.id AND u.karma <> agg.karma`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), recountTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := recount(ctx, pool); err != nil {
		slog.Error("Recount failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Recount complete")
}

func recount(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, target := range []struct{ table, kind string }{
		{"posts", "post"},
		{"comments", "comment"},
	} {
		tag, err := tx.Exec(ctx, fmt.Sprintf(counterRecountSQL, target.table, target.kind))
		if err != nil {
			return fmt.Errorf("failed to recount %s: %w", target.table, err)
		}
		slog.Info("Counters rebuilt", "table", target.table, "rows_repaired", tag.RowsAffected())
	}

	tag, err := tx.Exec(ctx, karmaRecountSQL)
	if err != nil {
		return fmt.Errorf("failed to recount karma: %w", err)
	}
	slog.Info("Karma rebuilt", "users_repaired", tag.RowsAffected())

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recount: %w", err)
	}
	return nil
}
