package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

func TestAutosaver_RunOnceFlushesAndEvicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idle, busy := f.newPage(t, "Idle"), f.newPage(t, "Busy")

	_, err := f.editor.Dispatch(ctx, idle.ID, insert("Text", domain.RootZone, 0))
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.editor.Dispatch(ctx, busy.ID, insert("Text", domain.RootZone, 0))
	require.NoError(t, err)

	a := service.NewAutosaver(f.editor, service.AutosaveOptions{IdleTimeout: 30 * time.Minute}, nil)
	assert.True(t, a.RunOnce(ctx))

	assert.Equal(t, []string{busy.ID}, f.editor.OpenPages())
	assert.False(t, f.editor.IsDirty(busy.ID))
	for _, id := range []string{idle.ID, busy.ID} {
		stored, err := f.docs.LoadDocument(id)
		require.NoError(t, err)
		assert.Len(t, stored.Content, 1, id)
	}
}

func TestAutosaver_ZeroIdleTimeoutKeepsPagesOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.newPage(t, "Home")

	_, err := f.editor.Open(ctx, page.ID)
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	a := service.NewAutosaver(f.editor, service.AutosaveOptions{}, nil)
	assert.True(t, a.RunOnce(ctx))
	assert.Equal(t, []string{page.ID}, f.editor.OpenPages())
}

func TestAutosaver_StartRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	a := service.NewAutosaver(f.editor, service.AutosaveOptions{Schedule: "every now and then"}, nil)
	assert.Error(t, a.Start(context.Background()))
}

func TestAutosaver_ScheduledRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.newPage(t, "Home")

	_, err := f.editor.Dispatch(ctx, page.ID, insert("Text", domain.RootZone, 0))
	require.NoError(t, err)

	a := service.NewAutosaver(f.editor, service.AutosaveOptions{Schedule: "@every 100ms"}, nil)
	require.NoError(t, a.Start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		a.Stop(stopCtx)
	})

	require.Eventually(t, func() bool {
		return !f.editor.IsDirty(page.ID)
	}, 3*time.Second, 50*time.Millisecond)
}
