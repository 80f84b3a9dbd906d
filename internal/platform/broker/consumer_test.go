package broker

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessageStructuredEvent(t *testing.T) {
	t.Parallel()

	raw := kafka.Message{
		Topic: "order.opened",
		Value: []byte(`{"entity":"pedido","action":"opened","resourceId":"42","metadata":{"tableId":"7"},"data":{"tableId":7}}`),
	}
	msg := decodeMessage(raw)

	require.Equal(t, "order.opened", msg.Topic)
	require.Equal(t, "orders", msg.Entity, "entity aliases normalize")
	require.Equal(t, "opened", msg.Action)
	require.Equal(t, "42", msg.ResourceID)
	require.Equal(t, "7", msg.Metadata["tableId"])
	require.False(t, msg.Timestamp.IsZero())
}

func TestDecodeMessageFillsActionFromTopic(t *testing.T) {
	t.Parallel()

	raw := kafka.Message{
		Topic: "reservation.cancelled",
		Value: []byte(`{"data":{"tableId":3}}`),
	}
	msg := decodeMessage(raw)

	require.Equal(t, "reservation.cancelled", msg.Topic)
	require.Equal(t, "reservations", msg.Entity)
	require.Equal(t, "cancelled", msg.Action)
}

func TestDecodeMessageNonJSONPayload(t *testing.T) {
	t.Parallel()

	raw := kafka.Message{
		Topic: "order.paid",
		Value: []byte("not json"),
	}
	msg := decodeMessage(raw)

	require.Equal(t, "order.paid", msg.Topic)
	require.Equal(t, "orders", msg.Entity)
	require.Equal(t, "paid", msg.Action)
	require.Equal(t, "not json", msg.Data)
}
