package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	capitalsText = "The quiz 'Capitals' has finished!\n🥇Anna – 30\n🥈Ben – 10"
	riversText   = "The quiz 'Rivers' has finished!\n🥇Ben – 20\n🥈Anna – 0"
	flagsText    = "The quiz 'Flags' has finished!\n🥇Cara – 50"
	randomText   = "The quiz 'Random' has finished!\n🥇Dan – 5"
)

func seedBoards(t *testing.T, db *gorm.DB) {
	t.Helper()
	svc := newScoreService(db, nil)
	ctx := context.Background()

	for _, q := range []struct {
		text string
		tag  *string
	}{
		{capitalsText, strPtr("week1")},
		{riversText, strPtr("week1")},
		{flagsText, strPtr("week2")},
		{randomText, nil},
	} {
		result, err := svc.Ingest(ctx, chatID, q.text, q.tag, nil)
		require.NoError(t, err)
		require.Equal(t, IngestCreated, result.Status)
	}
}

func TestLeaderboard_OrdersByTotalWithStableTieBreak(t *testing.T) {
	db := newTestDB(t)
	seedBoards(t, db)
	svc := NewLeaderboardService(db, nil)

	entries, err := svc.Leaderboard(context.Background(), chatID, nil, 0)
	require.NoError(t, err)

	require.Len(t, entries, 4)
	assert.Equal(t, "Cara", entries[0].Name)
	assert.Equal(t, 50, entries[0].TotalScore)
	// Anna and Ben both total 30; Anna appeared first so her id breaks the tie.
	assert.Equal(t, "Anna", entries[1].Name)
	assert.Equal(t, 30, entries[1].TotalScore)
	assert.Equal(t, "Ben", entries[2].Name)
	assert.Equal(t, 30, entries[2].TotalScore)
	assert.Equal(t, "Dan", entries[3].Name)

	// Deterministic across repeated calls.
	again, err := svc.Leaderboard(context.Background(), chatID, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, entries, again)
}

func TestLeaderboard_TagIsolation(t *testing.T) {
	db := newTestDB(t)
	seedBoards(t, db)
	svc := NewLeaderboardService(db, nil)

	week1, err := svc.Leaderboard(context.Background(), chatID, strPtr("week1"), 0)
	require.NoError(t, err)
	require.Len(t, week1, 2)
	for _, e := range week1 {
		assert.NotEqual(t, "Cara", e.Name)
		assert.NotEqual(t, "Dan", e.Name)
	}

	week2, err := svc.Leaderboard(context.Background(), chatID, strPtr("week2"), 0)
	require.NoError(t, err)
	require.Len(t, week2, 1)
	assert.Equal(t, "Cara", week2[0].Name)
}

func TestLeaderboard_UnknownTag(t *testing.T) {
	db := newTestDB(t)
	seedBoards(t, db)
	svc := NewLeaderboardService(db, nil)

	_, err := svc.Leaderboard(context.Background(), chatID, strPtr("week3"), 0)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestLeaderboard_Limit(t *testing.T) {
	db := newTestDB(t)
	seedBoards(t, db)
	svc := NewLeaderboardService(db, nil)

	entries, err := svc.Leaderboard(context.Background(), chatID, nil, 2)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "Cara", entries[0].Name)
	assert.Equal(t, "Anna", entries[1].Name)
}

func TestLeaderboard_OtherChatExcluded(t *testing.T) {
	db := newTestDB(t)
	seedBoards(t, db)

	scoreSvc := newScoreService(db, nil)
	_, err := scoreSvc.Ingest(context.Background(), "-1005555", flagsText, nil, nil)
	require.NoError(t, err)

	svc := NewLeaderboardService(db, nil)
	entries, err := svc.Leaderboard(context.Background(), "-1005555", nil, 0)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "Cara", entries[0].Name)
	assert.Equal(t, 50, entries[0].TotalScore)
}

func TestQuizzes_ListsTitlesInIngestionOrder(t *testing.T) {
	db := newTestDB(t)
	seedBoards(t, db)
	svc := NewLeaderboardService(db, nil)

	titles, err := svc.Quizzes(context.Background(), chatID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Capitals", "Rivers", "Flags", "Random"}, titles)

	week1, err := svc.Quizzes(context.Background(), chatID, strPtr("week1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Capitals", "Rivers"}, week1)
}

func TestTags_DistinctNonNull(t *testing.T) {
	db := newTestDB(t)
	seedBoards(t, db)
	svc := NewLeaderboardService(db, nil)

	tags, err := svc.Tags(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, []string{"week1", "week2"}, tags)
}

func TestTags_NoneFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	tags, err := svc.Tags(context.Background(), chatID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
