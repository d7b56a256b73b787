package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// StartDBCollectors periodically refreshes outbox status gauges.
func StartDBCollectors(ctx context.Context, db *pgxpool.Pool, interval time.Duration, logger *zap.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		updateDBGauges(ctx, db, logger)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				updateDBGauges(ctx, db, logger)
			}
		}
	}()
}

func updateDBGauges(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) {
	rows, err := db.Query(ctx, `SELECT status, COUNT(*) FROM outbox_messages GROUP BY status`)
	if err != nil {
		// table may not exist yet, skip the round
		return
	}
	defer rows.Close()

	var pending int64
	for rows.Next() {
		var status string
		var cnt int64
		if err := rows.Scan(&status, &cnt); err != nil {
			logger.Warn("metrics db scan outbox", zap.Error(err))
			continue
		}
		SetOutboxStatusCount(status, cnt)
		if status == "pending" {
			pending = cnt
		}
	}
	SetOutboxPendingCount(pending)
}
