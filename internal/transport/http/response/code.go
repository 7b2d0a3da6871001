package response

import "net/http"

// Client-side messages used when the backend gives nothing better.
const (
	MsgFallback = "An error occurred"
	MsgNetwork  = "Network error"
	MsgDecode   = "Invalid response from server"
)

// StatusMsgMap 用于集中管理 status - msg
var StatusMsgMap = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusConflict:            "Conflict",
	http.StatusInternalServerError: "Internal Server Error",
}

// MessageFor falls back to MsgFallback for unmapped statuses.
func MessageFor(status int) string {
	if msg, ok := StatusMsgMap[status]; ok {
		return msg
	}
	return MsgFallback
}
