package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry1 := &activity.Entry{
		ProjectID: "p1",
		Type:      activity.TypeProjectCreated,
		Summary:   "created project",
		CreatedAt: base,
	}
	entry2 := &activity.Entry{
		ProjectID: "p1",
		Type:      activity.TypeFileCreated,
		Summary:   "created file",
		CreatedAt: base.Add(time.Second),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)
	require.NotEqual(t, entry1.ID, entry2.ID)

	entries, err := repo.List(ctx, activity.ListOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.Type, entries[0].Type)
	require.Equal(t, entry1.Type, entries[1].Type)
	require.Nil(t, entries[0].FileID)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	fileID := "f1"
	require.NoError(t, repo.Log(ctx, &activity.Entry{
		ProjectID: "p1",
		FileID:    &fileID,
		Type:      activity.TypeContentSaved,
		Summary:   "saved",
	}))
	require.NoError(t, repo.Log(ctx, &activity.Entry{
		ProjectID: "p2",
		Type:      activity.TypeProjectCreated,
		Summary:   "created",
	}))

	entries, err := repo.List(ctx, activity.ListOptions{FileID: &fileID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "p1", entries[0].ProjectID)
	require.Equal(t, "f1", *entries[0].FileID)

	typ := activity.TypeProjectCreated
	entries, err = repo.List(ctx, activity.ListOptions{Type: &typ})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "p2", entries[0].ProjectID)

	entries, err = repo.List(ctx, activity.ListOptions{ProjectID: "missing"})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestActivityRepository_LimitOffset(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Log(ctx, &activity.Entry{
			ProjectID: "p1",
			Type:      activity.TypeContentSaved,
			Summary:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.List(ctx, activity.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "d", entries[0].Summary)
	require.Equal(t, "c", entries[1].Summary)

	entries, err = repo.List(ctx, activity.ListOptions{Offset: 3})
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestActivityService_WithSQLite(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	svc := activity.NewService(NewActivityRepository(db), nil)

	require.NoError(t, svc.LogActivity(ctx, &activity.Entry{
		ProjectID: "p1",
		Type:      activity.TypeProjectCreated,
		Summary:   "created",
	}))

	entries, err := svc.GetRecentActivity(ctx, activity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].CreatedAt.IsZero())
}
