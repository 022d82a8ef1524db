package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionEstablished = "session.established"
	EventTypeSessionCleared     = "session.cleared"
)

// Reasons carried by a session.cleared event.
const (
	ClearReasonLogout  = "logout"
	ClearReasonExpired = "expired"
	ClearReasonResync  = "resync"
)

type SessionEstablishedEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func NewSessionEstablishedEvent(userID int64, username string) *SessionEstablishedEvent {
	return &SessionEstablishedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionEstablished,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"username": username,
			},
		},
		UserID:   userID,
		Username: username,
	}
}

type SessionClearedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

func NewSessionClearedEvent(reason string) *SessionClearedEvent {
	return &SessionClearedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionCleared,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reason": reason,
			},
		},
		Reason: reason,
	}
}
