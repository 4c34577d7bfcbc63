package bot

import (
	"strings"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
)

// CanAct decides whether a message may trigger automation under mode.
// OWNER accepts only self-sent messages, ALL only messages from others and
// SPECIFIC only senders containing one of the allowed entries.
func CanAct(mode entities.AccessMode, allowed []string, fromMe bool, sender string) bool {
	switch mode {
	case entities.AccessOwner:
		return fromMe
	case entities.AccessAll:
		return !fromMe
	case entities.AccessSpecific:
		if fromMe {
			return false
		}
		for _, entry := range allowed {
			entry = strings.TrimSpace(entry)
			if entry != "" && strings.Contains(sender, entry) {
				return true
			}
		}
	}
	return false
}
