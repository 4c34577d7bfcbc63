package utils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/database"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagination(t *testing.T) {
	db := database.OpenTestDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&entities.Message{
			SessionID:         "s1",
			ProtocolMessageID: fmt.Sprintf("m%d", i),
			ChatJID:           "c",
			Timestamp:         base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	ctx := context.Background()

	var page []entities.Message
	pages, err := Pagination(&page, 1, 2, "timestamp DESC", db, ctx, "session_id = ?", "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	require.Len(t, page, 2)
	assert.Equal(t, "m4", page[0].ProtocolMessageID)

	var last []entities.Message
	_, err = Pagination(&last, 3, 2, "timestamp DESC", db, ctx, "session_id = ?", "s1")
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "m0", last[0].ProtocolMessageID)

	var none []entities.Message
	_, err = Pagination(&none, 4, 2, "timestamp DESC", db, ctx, "session_id = ?", "s1")
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	pages, err = Pagination(&none, 1, 2, "timestamp DESC", db, ctx, "session_id = ?", "other")
	require.NoError(t, err)
	assert.Zero(t, pages)
}
