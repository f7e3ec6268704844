package session_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"institute-service/common/logger"
	"institute-service/common/metrics"
	"institute-service/internal/session"
	"institute-service/testing/testnats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFanOutIntegration(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	subject := "test.session.ended"
	log := logger.Discard()

	// two instances, each with its own revocation set
	local := session.NewRevocations()
	peer := session.NewRevocations()

	consumer := session.NewConsumer(natsContainer.Connect(t), subject, peer, log, metrics.NewMock())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Start(ctx) }()
	defer func() { _ = consumer.Close() }()

	require.Eventually(t, func() bool { return consumer.HealthCheck() == nil }, 5*time.Second, 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	publisher := session.NewPublisher(natsContainer.Connect(t), subject, log, metrics.NewMock())
	terminator := session.NewTerminator(local, publisher, log)

	t.Run("SignOutReachesPeer", func(t *testing.T) {
		sid := uuid.New()

		terminator.End(context.Background(), session.Ended{
			SessionID: sid,
			AccountID: uuid.New(),
			Reason:    session.ReasonSignOut,
			Until:     time.Now().Add(time.Minute),
		})

		assert.True(t, local.IsRevoked(sid))
		assert.Eventually(t, func() bool {
			return peer.IsRevoked(sid)
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("MalformedPayloadIgnored", func(t *testing.T) {
		conn := natsContainer.Connect(t)
		before := peer.Len()

		require.NoError(t, conn.Publish(subject, []byte("{not json")))
		data, _ := json.Marshal(session.Ended{SessionID: uuid.New(), AccountID: uuid.New(), At: time.Now(), Until: time.Now().Add(time.Minute)})
		require.NoError(t, conn.Publish(subject, data))

		assert.Eventually(t, func() bool { return peer.Len() == before+1 }, 2*time.Second, 20*time.Millisecond)
	})
}
