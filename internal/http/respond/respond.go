package respond

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/hongminglow/all-in-dash/internal/models/dto"
)

// Error codes written in the error envelope.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

// JSON writes data as the response body.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, data)
}

// Message writes a {"message": ...} acknowledgement.
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, dto.MessageResponse{Message: message})
}

// Error writes the dashboard error envelope. displayMessages, when given,
// become the user-facing texts clients prefer over message.
func Error(w http.ResponseWriter, status int, code, message string, displayMessages ...string) {
	body := &dto.ErrorBody{Code: code, Message: message, StatusCode: status}
	for _, text := range displayMessages {
		body.DisplayMessages = append(body.DisplayMessages, dto.DisplayMessage{Value: text, Locale: "en"})
	}
	write(w, status, dto.ErrorEnvelope{Error: body})
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
