package constant

const (
	SESSION_STARTED  = "Session started"
	SESSION_STOPPED  = "Session stopped"
	MESSAGE_SENT     = "Message sent successfully"
	MESSAGE_RESOLVED = "Messages retrieved successfully"
	INVALID_SESSION  = "Invalid session id"
	NO_QR_CODE       = "No pairing code available, the session may already be connected"
)
