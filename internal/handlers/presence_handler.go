package handlers

import (
	"encoding/json"
	"net/http"

	"lendbook/internal/middleware"
	"lendbook/internal/notifier"
	"lendbook/internal/realtime"
	"lendbook/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PresenceHandler receives the connect/disconnect signals from the delivery
// layer and drives the presence tracker. Friend notifications fire only on
// true online/offline edges, never on per-device churn.
type PresenceHandler struct {
	tracker *realtime.PresenceTracker
	users   *services.UserService
	events  notifier.Notifier
	logger  zerolog.Logger
}

func NewPresenceHandler(tracker *realtime.PresenceTracker, users *services.UserService, events notifier.Notifier, logger zerolog.Logger) *PresenceHandler {
	return &PresenceHandler{
		tracker: tracker,
		users:   users,
		events:  events,
		logger:  logger,
	}
}

type disconnectRequest struct {
	ConnectionID string `json:"connection_id"`
}

func (h *PresenceHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	connectionID := uuid.NewString()
	becameOnline := h.tracker.Connect(userID, connectionID)

	if becameOnline {
		friendIDs, err := h.users.FriendIDs(r.Context(), userID)
		if err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load friends for online notification")
		} else if err := h.events.FriendOnline(r.Context(), friendIDs, userID); err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to notify friends of online status")
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"connection_id": connectionID,
		"connections":   h.tracker.ConnectionCount(userID),
	})
}

func (h *PresenceHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req disconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "connection_id is required")
		return
	}

	becameOffline := h.tracker.Disconnect(userID, req.ConnectionID)

	if becameOffline {
		friendIDs, err := h.users.FriendIDs(r.Context(), userID)
		if err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load friends for offline notification")
		} else if err := h.events.FriendOffline(r.Context(), friendIDs, userID); err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to notify friends of offline status")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PresenceHandler) Online(w http.ResponseWriter, r *http.Request) {
	ids := h.tracker.OnlineUserIDs()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(ids),
		"user_ids": ids,
	})
}
