package websocket

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_DroppedReasons(t *testing.T) {
	before := testutil.ToFloat64(MessagesDroppedTotal.WithLabelValues("channel_full"))

	MessagesDroppedTotal.WithLabelValues("channel_full").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(MessagesDroppedTotal.WithLabelValues("channel_full")))
}

func TestMetrics_Described(t *testing.T) {
	assert.Equal(t, 1, testutil.CollectAndCount(ActiveConnections))
	assert.Equal(t, 1, testutil.CollectAndCount(MessagesReceivedTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(ConnectionDuration))
}
