package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/grvbrk/yt-categorizer/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// setupMongoStore connects to MONGO_TEST_URI and uses a throwaway database.
func setupMongoStore(t *testing.T) *MongoVideoStore {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := ConnectMongo(ctx, uri, quietLogger())
	require.NoError(t, err)

	database := fmt.Sprintf("yt_categorizer_test_%d", time.Now().UnixNano())
	store, err := NewMongoVideoStore(ctx, client, database, quietLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Database(database).Drop(context.Background())
		assert.NoError(t, store.Close())
	})
	return store
}

func TestMongoSaveVideosUpsertKeepsCreatedAt(t *testing.T) {
	store := setupMongoStore(t)
	ctx := context.Background()

	first := testVideo("dup", "UC1", "Gophers", "2024-01-01T00:00:00Z", strPtr("10"))
	saved, err := store.SaveVideos(ctx, []models.Video{first})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	createdAt := saved[0].Created_At

	second := first
	second.Title = "Renamed"
	second.Category_ID = nil
	saved, err = store.SaveVideos(ctx, []models.Video{second})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	assert.Equal(t, "Renamed", saved[0].Title)
	assert.Nil(t, saved[0].Category_ID)
	assert.True(t, createdAt.Equal(saved[0].Created_At))

	resp, err := store.GetVideos(ctx, GetVideosParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.TotalCount)
}

func TestMongoGetVideosFilters(t *testing.T) {
	store := setupMongoStore(t)
	seedVideos(t, store)
	ctx := context.Background()

	resp, err := store.GetVideos(ctx, GetVideosParams{ChannelTitle: "go CHANNEL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2", "g3"}, ids(resp.Videos))

	resp, err = store.GetVideos(ctx, GetVideosParams{ChannelTitle: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids(resp.Videos))

	resp, err = store.GetVideos(ctx, GetVideosParams{ChannelIDs: []string{"UCgo"}, CategoryID: "27"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g2"}, ids(resp.Videos))

	resp, err = store.GetVideos(ctx, GetVideosParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g3"}, ids(resp.Videos))
	assert.Equal(t, models.NewPagination(2, 2, 5), resp.Pagination)

	n, err := store.ClearVideos(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestPartialBulkWrite(t *testing.T) {
	oneFailed := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{}}}
	allFailed := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{}, {}}}
	concern := mongo.BulkWriteException{
		WriteErrors:       []mongo.BulkWriteError{{}},
		WriteConcernError: &mongo.WriteConcernError{Message: "not enough replicas"},
	}

	tests := []struct {
		name        string
		err         error
		wantFailed  int
		wantPartial bool
	}{
		{"some writes rejected", oneFailed, 1, true},
		{"wrapped partial", errors.Wrap(oneFailed, "bulk"), 1, true},
		{"every write rejected", allFailed, 2, false},
		{"write concern failure", concern, 0, false},
		{"connection failure", errors.New("server selection timeout"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failed, partial := partialBulkWrite(tt.err, 2)
			assert.Equal(t, tt.wantFailed, failed)
			assert.Equal(t, tt.wantPartial, partial)
		})
	}
}
