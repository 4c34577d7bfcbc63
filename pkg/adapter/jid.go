package adapter

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// IsGroup reports whether jid addresses a group chat.
func IsGroup(jid string) bool {
	return strings.HasSuffix(jid, "@"+types.GroupServer)
}

// IsDirect reports whether jid addresses a single user, by phone number or
// by session-local id.
func IsDirect(jid string) bool {
	return strings.HasSuffix(jid, "@"+types.DefaultUserServer) || strings.HasSuffix(jid, "@"+types.HiddenUserServer)
}

// IsStatusBroadcast reports whether jid is the status feed pseudo-chat.
func IsStatusBroadcast(jid string) bool {
	return jid == types.StatusBroadcastJID.String()
}

// UserPart returns the part of jid before '@' and any device suffix.
func UserPart(jid string) string {
	user, _, _ := strings.Cut(jid, "@")
	user, _, _ = strings.Cut(user, ":")
	return user
}

// NormalizeJID turns a bare phone number into a user JID and leaves full
// JIDs untouched.
func NormalizeJID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "@") {
		return s
	}
	return strings.TrimPrefix(s, "+") + "@" + types.DefaultUserServer
}
