package dto

// ErrorEnvelope is the body the API returns on any non-success status.
type ErrorEnvelope struct {
	Error *ErrorBody `json:"error"`
}

// ErrorBody carries the machine code, the raw message and optional
// user-facing messages for a failed call.
type ErrorBody struct {
	Code            string           `json:"code"`
	Message         string           `json:"message"`
	StatusCode      int              `json:"status_code"`
	DisplayMessages []DisplayMessage `json:"display_messages,omitempty"`
}

type DisplayMessage struct {
	Value  string `json:"value"`
	Locale string `json:"locale,omitempty"`
}

// UnknownErrorCode is used for envelopes synthesized from a bare status line.
const UnknownErrorCode = "UNKNOWN_ERROR"

// PreferredMessage returns the first display message when present and the raw
// message otherwise.
func (b ErrorBody) PreferredMessage() string {
	if len(b.DisplayMessages) > 0 {
		return b.DisplayMessages[0].Value
	}
	return b.Message
}
