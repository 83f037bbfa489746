package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"teambot/internal/domain"
	"teambot/internal/service"
	"teambot/pkg/logger"
)

// flexID decodes a chat id that the platform sends either as a JSON number
// or as a string
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// eventPayload is the go-cqhttp message push envelope, reduced to the fields
// the bot consumes
type eventPayload struct {
	PostType    string `json:"post_type"`
	MessageType string `json:"message_type"`
	GroupID     flexID `json:"group_id"`
	UserID      flexID `json:"user_id"`
	RawMessage  string `json:"raw_message"`
	Sender      struct {
		Nickname string `json:"nickname"`
	} `json:"sender"`
}

// eventResponse mirrors the status envelope the platform expects back
type eventResponse struct {
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	GroupID string `json:"group_id,omitempty"`
}

// EventHandler handles inbound chat-platform event pushes
type EventHandler struct {
	commands *CommandHandler
	notifier service.Notifier
	prefix   string
	logger   *logger.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(commands *CommandHandler, notifier service.Notifier, prefix string, log *logger.Logger) *EventHandler {
	return &EventHandler{
		commands: commands,
		notifier: notifier,
		prefix:   prefix,
		logger:   log,
	}
}

// Receive handles POST /event
func (h *EventHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WithError(err).Warn("Failed to decode event payload")
		h.respond(w, http.StatusBadRequest, eventResponse{Status: "error", Reason: "invalid payload"})
		return
	}

	if payload.PostType != "message" || payload.MessageType != "group" {
		h.respond(w, http.StatusOK, eventResponse{Status: "ignored", Reason: "not a group message"})
		return
	}
	if payload.GroupID == "" {
		h.respond(w, http.StatusOK, eventResponse{Status: "ignored", Reason: "no group_id"})
		return
	}
	if !strings.HasPrefix(payload.RawMessage, h.prefix) {
		h.respond(w, http.StatusOK, eventResponse{Status: "ignored", Reason: "not a team command"})
		return
	}

	msg := domain.GroupMessage{
		GroupID:  string(payload.GroupID),
		UserID:   string(payload.UserID),
		Message:  payload.RawMessage,
		Nickname: payload.Sender.Nickname,
	}
	command := strings.TrimSpace(strings.TrimPrefix(payload.RawMessage, h.prefix))

	response := h.commands.Handle(ctx, msg, command)

	if response != "" {
		h.push(ctx, msg.GroupID, response)
	}

	h.respond(w, http.StatusOK, eventResponse{
		Status:  "ok",
		Message: response,
		GroupID: msg.GroupID,
	})
}

// push sends the response text back to the group; delivery failures are
// logged, the webhook reply already carries the text
func (h *EventHandler) push(ctx context.Context, groupID, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := h.notifier.Send(sendCtx, groupID, text); err != nil {
		h.logger.WithError(err).WithField("group_id", groupID).Error("Failed to push command response")
	}
}

func (h *EventHandler) respond(w http.ResponseWriter, status int, body eventResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode event response")
	}
}
