package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/aq2208/gstore-api/internal/usecase"
)

type MySQLOutboxRepo struct{ db *sql.DB }

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo { return &MySQLOutboxRepo{db: db} }

func (r *MySQLOutboxRepo) Insert(ctx context.Context, channel string, payload []byte) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO outbox (channel,payload,status,retry_count,next_attempt_at,created_at)
VALUES (?, ?, 'PENDING', 0, NOW(6), NOW(6))
`, channel, payload)
	return err
}

func (r *MySQLOutboxRepo) FetchPending(ctx context.Context, limit int) ([]usecase.OutboxRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
SELECT id,channel,payload,retry_count,created_at
FROM outbox
WHERE status = 'PENDING' AND next_attempt_at <= NOW(6)
ORDER BY id
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []usecase.OutboxRecord
	for rows.Next() {
		var rec usecase.OutboxRecord
		if err := rows.Scan(&rec.ID, &rec.Channel, &rec.Payload, &rec.RetryCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *MySQLOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE outbox SET status = 'SENT' WHERE id = ?`, id)
	return err
}

func (r *MySQLOutboxRepo) MarkFailed(ctx context.Context, id int64, nextAttempt time.Time) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
UPDATE outbox SET retry_count = retry_count + 1, next_attempt_at = ? WHERE id = ?`, nextAttempt, id)
	return err
}

var _ usecase.OutboxRepo = (*MySQLOutboxRepo)(nil)
