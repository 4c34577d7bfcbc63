package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJIDClassification(t *testing.T) {
	tests := []struct {
		jid       string
		group     bool
		direct    bool
		broadcast bool
	}{
		{"6281234@s.whatsapp.net", false, true, false},
		{"1234567890@lid", false, true, false},
		{"120363@g.us", true, false, false},
		{"status@broadcast", false, false, true},
		{"1234@newsletter", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.jid, func(t *testing.T) {
			assert.Equal(t, tt.group, IsGroup(tt.jid))
			assert.Equal(t, tt.direct, IsDirect(tt.jid))
			assert.Equal(t, tt.broadcast, IsStatusBroadcast(tt.jid))
		})
	}
}

func TestUserPart(t *testing.T) {
	assert.Equal(t, "6281234", UserPart("6281234:12@s.whatsapp.net"))
	assert.Equal(t, "6281234", UserPart("6281234@s.whatsapp.net"))
	assert.Equal(t, "abc", UserPart("abc"))
}

func TestCloseReason(t *testing.T) {
	assert.True(t, CloseLoggedOut.IsLogout())
	assert.False(t, CloseConnectionLost.IsLogout())
	assert.False(t, CloseRequested.IsLogout())
	assert.Equal(t, "logged_out", CloseLoggedOut.String())
	assert.Equal(t, "unknown", CloseReason(1).String())
}

func TestNormalizeJID(t *testing.T) {
	assert.Equal(t, "6281234@s.whatsapp.net", NormalizeJID(" +6281234 "))
	assert.Equal(t, "120363@g.us", NormalizeJID("120363@g.us"))
	assert.Equal(t, "", NormalizeJID(""))
}

func TestKindForMime(t *testing.T) {
	assert.Equal(t, MediaImage, KindForMime("image/jpeg"))
	assert.Equal(t, MediaSticker, KindForMime("image/webp"))
	assert.Equal(t, MediaVideo, KindForMime("video/mp4"))
	assert.Equal(t, MediaAudio, KindForMime("audio/ogg"))
	assert.Equal(t, MediaDocument, KindForMime("application/pdf"))
}
