package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/models"
)

// --- Общие хелперы ---

func authorizeClub(session models.Session, clubID int) error {
	if !session.CanAccessClub(clubID) {
		return ErrForbidden
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(v int) *int { return &v }

// notify sends an event to a realtime room. A nil notifier disables realtime updates.
func notify(ctx context.Context, n brackets.Notifier, logger *slog.Logger, room, eventType string, payload interface{}) {
	if n == nil {
		return
	}
	n.BroadcastToRoom(room, brackets.WebSocketMessage{Type: eventType, Payload: payload, RoomID: room})
	logger.DebugContext(ctx, "Realtime event sent", slog.String("room", room), slog.String("type", eventType))
}
