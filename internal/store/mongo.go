package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/grvbrk/yt-categorizer/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const videosCollection = "videos"

func ConnectMongo(ctx context.Context, uri string, logger *logrus.Logger) (*mongo.Client, error) {
	var client *mongo.Client
	var err error

	for i := 1; i <= connectAttempts; i++ {
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
			if err == nil {
				logger.Info("Connected to MongoDB!")
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		logger.WithError(err).WithField("attempt", i).Warn("MongoDB not ready")

		select {
		case <-time.After(connectWait):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "connect mongo")
		}
	}

	return nil, errors.Wrap(err, "could not connect to MongoDB after multiple attempts")
}

type MongoVideoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logrus.Logger
}

// NewMongoVideoStore ensures the collection indexes exist before returning.
func NewMongoVideoStore(ctx context.Context, client *mongo.Client, database string, logger *logrus.Logger) (*MongoVideoStore, error) {
	collection := client.Database(database).Collection(videosCollection)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "channelId", Value: 1}}},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		{Keys: bson.D{{Key: "publishedAt", Value: -1}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create video indexes")
	}

	return &MongoVideoStore{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

func (m *MongoVideoStore) SaveVideos(ctx context.Context, videos []models.Video) ([]models.Video, error) {
	if len(videos) == 0 {
		return []models.Video{}, nil
	}

	now := time.Now().UTC()

	writes := make([]mongo.WriteModel, 0, len(videos))
	for _, v := range videos {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": v.Id}).
			SetUpdate(upsertDocument(v, now)).
			SetUpsert(true))
	}

	_, err := m.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		if failed, partial := partialBulkWrite(err, len(writes)); partial {
			m.logger.WithError(err).WithField("failed", failed).Warn("some video upserts failed")
		} else {
			m.logger.WithError(err).Warn("bulk upsert failed, falling back to insert")
			if err := m.insertVideos(ctx, videos, now); err != nil {
				return nil, err
			}
		}
	}

	return m.videosByID(ctx, videoIDs(videos))
}

// partialBulkWrite reports whether err only rejected some of the attempted
// writes, leaving the rest applied.
func partialBulkWrite(err error, attempted int) (int, bool) {
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || bulkErr.WriteConcernError != nil {
		return 0, false
	}
	failed := len(bulkErr.WriteErrors)
	return failed, failed > 0 && failed < attempted
}

func upsertDocument(v models.Video, now time.Time) bson.M {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}

	set := bson.M{
		"title":        v.Title,
		"description":  v.Description,
		"publishedAt":  v.Published_At,
		"channelId":    v.Channel_ID,
		"channelTitle": v.Channel_Title,
		"tags":         tags,
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}

	if v.Category_ID != nil && *v.Category_ID != "" {
		set["categoryId"] = *v.Category_ID
	} else {
		update["$unset"] = bson.M{"categoryId": ""}
	}

	return update
}

func (m *MongoVideoStore) insertVideos(ctx context.Context, videos []models.Video, now time.Time) error {
	docs := make([]any, 0, len(videos))
	for _, v := range videos {
		v.Created_At = now
		if v.Tags == nil {
			v.Tags = []string{}
		}
		docs = append(docs, v)
	}

	if _, err := m.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return errors.Wrap(err, "fallback insert")
	}
	return nil
}

func (m *MongoVideoStore) videosByID(ctx context.Context, ids []string) ([]models.Video, error) {
	cursor, err := m.collection.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read back videos")
	}

	var found []models.Video
	if err := cursor.All(ctx, &found); err != nil {
		return nil, errors.Wrap(err, "failed to decode videos")
	}

	byID := make(map[string]models.Video, len(found))
	for _, v := range found {
		byID[v.Id] = normalizeVideo(v)
	}

	videos := make([]models.Video, 0, len(byID))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

func (m *MongoVideoStore) GetVideos(ctx context.Context, params GetVideosParams) (*VideosResponse, error) {
	params = params.normalized()

	filter := bson.M{}
	if title := strings.TrimSpace(params.ChannelTitle); title != "" {
		filter["channelTitle"] = bson.M{"$regex": regexp.QuoteMeta(title), "$options": "i"}
	}
	if params.CategoryID != "" {
		filter["categoryId"] = params.CategoryID
	}
	if len(params.ChannelIDs) > 0 {
		filter["channelId"] = bson.M{"$in": params.ChannelIDs}
	}

	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total video count")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "id", Value: 1}}).
		SetSkip(int64(params.offset())).
		SetLimit(int64(params.Limit))

	videos, err := m.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	return &VideosResponse{
		Videos:     videos,
		Pagination: models.NewPagination(params.Page, params.Limit, int(total)),
	}, nil
}

func (m *MongoVideoStore) GetVideosByChannel(ctx context.Context, channelID string) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "id", Value: 1}})
	return m.find(ctx, bson.M{"channelId": channelID}, opts)
}

func (m *MongoVideoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Video, error) {
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get videos")
	}

	videos := []models.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, errors.Wrap(err, "failed to decode videos")
	}
	for i := range videos {
		videos[i] = normalizeVideo(videos[i])
	}
	return videos, nil
}

func (m *MongoVideoStore) ClearVideos(ctx context.Context) (int64, error) {
	res, err := m.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to clear videos")
	}
	return res.DeletedCount, nil
}

func (m *MongoVideoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func normalizeVideo(v models.Video) models.Video {
	if v.Tags == nil {
		v.Tags = []string{}
	}
	v.Created_At = v.Created_At.UTC()
	return v
}
