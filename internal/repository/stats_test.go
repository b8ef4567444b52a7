package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	now := time.Now()

	f.post(t, db, f.alice, "Old post", withCreated(now.AddDate(0, -2, 0)), withCounts(10, 2, 1), withSatisfaction(4))
	f.post(t, db, f.alice, "New post", withCreated(now.Add(-time.Hour)), withCounts(5, 1, 0), withSatisfaction(5))
	f.post(t, db, f.bob, "Bob post", withModel(f.claude, "", ""), withCreated(now.AddDate(0, 0, -10)), withCounts(1, 0, 3))

	totals, err := repo.Totals(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, totals.Posts)
	assert.EqualValues(t, 16, totals.Views)
	assert.EqualValues(t, 3, totals.Likes)
	assert.EqualValues(t, 4, totals.Bookmarks)
	require.NotNil(t, totals.AvgSatisfaction)
	assert.InDelta(t, 4.5, *totals.AvgSatisfaction, 0.001)

	mine, err := repo.Totals(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Posts)
	assert.Nil(t, mine.AvgSatisfaction)

	users, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, users)

	weekly, err := repo.CountPostsSince(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.EqualValues(t, 1, weekly)

	authors, err := repo.CountActiveAuthors(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 2, authors)

	recent, err := repo.RecentPosts(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"New post", "Bob post"}, titles(recent))

	dist, err := repo.PlatformDistribution(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []NameCount{{"OpenAI", 2}, {"Anthropic", 1}}, dist)

	cats, err := repo.CategoryDistribution(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []NameCount{{"개발", 2}}, cats)

	last, err := repo.LastPostAt(ctx, f.alice.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, now.Add(-time.Hour), *last, time.Second)

	none, err := repo.LastPostAt(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, none)
}
