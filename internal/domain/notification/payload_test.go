package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalPayloadRejectsTypeMismatch(t *testing.T) {
	_, err := MarshalPayload(TypeDeadline, InactivityPayload{PendingTasks: 3})
	assert.Error(t, err)

	_, err = MarshalPayload(TypeSystem, TaskEventPayload{TaskID: uuid.New(), Event: "created"})
	assert.Error(t, err)
}

func TestMarshalPayloadNilIsEmpty(t *testing.T) {
	raw, err := MarshalPayload(TypeDeadline, nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestPayloadRoundTrip(t *testing.T) {
	taskID := uuid.New()
	due := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		typ     Type
		payload Payload
	}{
		{"deadline", TypeDeadline, DeadlinePayload{TaskID: taskID, DueDate: due}},
		{"inactivity", TypeSystem, InactivityPayload{PendingTasks: 7}},
		{"task event", TypeTask, TaskEventPayload{TaskID: taskID, Event: "completed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := MarshalPayload(tt.typ, tt.payload)
			require.NoError(t, err)

			n := &Notification{Type: tt.typ, Payload: raw}
			decoded, err := n.DecodePayload()
			require.NoError(t, err)
			assert.Equal(t, tt.payload, decoded)
		})
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	n := &Notification{Type: TypeDeadline}
	p, err := n.DecodePayload()
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDecodePayloadUnknownType(t *testing.T) {
	n := &Notification{Type: Type("promotional"), Payload: []byte(`{}`)}
	_, err := n.DecodePayload()
	assert.Error(t, err)
}
