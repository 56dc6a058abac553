package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Payload is the closed set of structured data a notification can carry.
// Each notification type has exactly one payload shape; there is no
// free-form metadata map.
type Payload interface {
	payloadType() Type
}

// DeadlinePayload accompanies TypeDeadline notifications
type DeadlinePayload struct {
	TaskID  uuid.UUID `json:"task_id"`
	DueDate time.Time `json:"due_date"`
}

func (DeadlinePayload) payloadType() Type { return TypeDeadline }

// InactivityPayload accompanies TypeSystem inactivity reminders
type InactivityPayload struct {
	PendingTasks int64 `json:"pending_tasks"`
}

func (InactivityPayload) payloadType() Type { return TypeSystem }

// TaskEventPayload accompanies TypeTask lifecycle notifications
type TaskEventPayload struct {
	TaskID uuid.UUID `json:"task_id"`
	Event  string    `json:"event"`
}

func (TaskEventPayload) payloadType() Type { return TypeTask }

// MarshalPayload encodes a payload for storage after checking it matches
// the notification type it is being attached to.
func MarshalPayload(typ Type, p Payload) (datatypes.JSON, error) {
	if p == nil {
		return nil, nil
	}
	if p.payloadType() != typ {
		return nil, fmt.Errorf("payload %T does not belong to notification type %q", p, typ)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// DecodePayload returns the typed payload of a notification, or nil when
// the notification carries none.
func (n *Notification) DecodePayload() (Payload, error) {
	if len(n.Payload) == 0 {
		return nil, nil
	}

	switch n.Type {
	case TypeDeadline:
		var p DeadlinePayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode deadline payload: %w", err)
		}
		return p, nil
	case TypeSystem:
		var p InactivityPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode inactivity payload: %w", err)
		}
		return p, nil
	case TypeTask:
		var p TaskEventPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode task event payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}
}
