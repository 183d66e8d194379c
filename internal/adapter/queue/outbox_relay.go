package queue

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/metrics"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/google/uuid"
)

const maxRelayBackoff = 5 * time.Minute

// OutboxRelay moves committed outbox rows to the broker. Delivery is
// at-least-once; consumers must tolerate duplicates.
type OutboxRelay struct {
	repo     usecase.OutboxRepo
	pub      Publisher
	interval time.Duration
	batch    int
	log      *slog.Logger
	now      func() time.Time
}

func NewOutboxRelay(repo usecase.OutboxRepo, pub Publisher, interval time.Duration, batch int) *OutboxRelay {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &OutboxRelay{
		repo:     repo,
		pub:      pub,
		interval: interval,
		batch:    batch,
		log:      logging.New("outbox-relay"),
		now:      time.Now,
	}
}

// Run relays on every tick until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	r.log.Info("outbox relay started", "interval", r.interval.String(), "batch", r.batch)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-t.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				r.log.Error("outbox relay pass failed", "err", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many rows were sent.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	recs, err := r.repo.FetchPending(ctx, r.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range recs {
		msgID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("outbox:"+strconv.FormatInt(rec.ID, 10))).String()
		if err := r.pub.Publish(ctx, rec.Channel, msgID, rec.Payload); err != nil {
			metrics.OutboxRelayed.WithLabelValues(rec.Channel, "error").Inc()
			next := r.now().Add(backoff(rec.RetryCount))
			r.log.Warn("publish outbox event", "id", rec.ID, "channel", rec.Channel,
				"retry", rec.RetryCount, "next_attempt", next, "err", err)
			if merr := r.repo.MarkFailed(ctx, rec.ID, next); merr != nil {
				return sent, merr
			}
			continue
		}
		if err := r.repo.MarkSent(ctx, rec.ID); err != nil {
			return sent, err
		}
		metrics.OutboxRelayed.WithLabelValues(rec.Channel, "ok").Inc()
		sent++
	}
	return sent, nil
}

// backoff doubles from one second and caps at maxRelayBackoff.
func backoff(retry int) time.Duration {
	if retry > 20 {
		return maxRelayBackoff
	}
	d := time.Second << retry
	if d > maxRelayBackoff {
		return maxRelayBackoff
	}
	return d
}
