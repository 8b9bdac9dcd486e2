package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/transport"
)

// cannedReply answers free text when no real agent is connected.
func cannedReply(message string) string {
	return fmt.Sprintf(
		"Thanks, we received %q. An engineer will follow up; meanwhile choose an option from 1 to 6.",
		message,
	)
}

// chat implements the responder endpoint targeted by transport.Client.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req transport.Request
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")

		return
	}

	logger.DebugKV(r.Context(), "Chat message received", "user_id", req.UserID, "timestamp", req.Timestamp)

	reply := s.reply(message)

	writeJSON(w, http.StatusOK, transport.Response{Response: &reply})
}
