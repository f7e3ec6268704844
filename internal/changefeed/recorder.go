package changefeed

import (
	"context"
	"time"

	"institute-service/internal/metrics"

	"github.com/google/uuid"
)

// Recorder counts a committed write and publishes it to the feed.
type Recorder struct {
	feed    Publisher
	metrics *metrics.Metrics
}

// NewRecorder treats a nil feed as Noop.
func NewRecorder(feed Publisher, m *metrics.Metrics) *Recorder {
	if feed == nil {
		feed = Noop{}
	}
	return &Recorder{feed: feed, metrics: m}
}

func (r *Recorder) Written(ctx context.Context, entity, op string, id, owner uuid.UUID) {
	if r == nil {
		return
	}
	r.metrics.RecordWrite(ctx, entity, op)
	r.feed.Publish(ctx, Change{
		Entity: entity,
		Op:     op,
		ID:     id,
		Owner:  owner,
		At:     time.Now().UTC(),
	})
}
