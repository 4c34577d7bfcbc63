package webhook

import (
	"context"
	"testing"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/database"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCRUD(t *testing.T) {
	db := database.OpenTestDB(t)
	seed(t, db)
	s := NewService(NewRepo(db))
	ctx := context.Background()

	hook, err := s.CreateWebhook(ctx, 1, dtos.WebhookCreateDTO{URL: "http://x", Events: []string{"message.received"}, SessionID: "s1"})
	require.NoError(t, err)
	assert.True(t, hook.IsActive)
	require.NotNil(t, hook.SessionID)

	inactive := false
	off, err := s.CreateWebhook(ctx, 1, dtos.WebhookCreateDTO{URL: "http://y", Events: []string{"*"}, Active: &inactive})
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	list, err := s.ListWebhooks(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.ToggleWebhook(ctx, 1, off.ID, true))
	active, err := NewRepo(db).FindActive(ctx, 1, "s2")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, off.ID, active[0].ID)

	assert.ErrorIs(t, s.DeleteWebhook(ctx, 2, hook.ID), ErrWebhookNotFound)
	require.NoError(t, s.DeleteWebhook(ctx, 1, hook.ID))
	assert.ErrorIs(t, s.ToggleWebhook(ctx, 1, hook.ID, false), ErrWebhookNotFound)
}

func TestServiceRejectsForeignSessionAndUnknownEvent(t *testing.T) {
	db := database.OpenTestDB(t)
	seed(t, db)
	s := NewService(NewRepo(db))
	ctx := context.Background()

	_, err := s.CreateWebhook(ctx, 1, dtos.WebhookCreateDTO{URL: "http://x", Events: []string{"*"}, SessionID: "x1"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.CreateWebhook(ctx, 1, dtos.WebhookCreateDTO{URL: "http://x", Events: []string{"message.deleted"}})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
