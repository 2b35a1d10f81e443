package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/grvbrk/yt-categorizer/internal/models"
	"github.com/grvbrk/yt-categorizer/internal/store"
	"github.com/grvbrk/yt-categorizer/internal/youtube"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultChannelConcurrency = 3

type ChannelResolver interface {
	Resolve(ctx context.Context, identifier string) youtube.Resolution
}

type UploadEnumerator interface {
	Enumerate(ctx context.Context, channelID string) youtube.Enumeration
}

type IngestionRecorder interface {
	RecordIngestion(ctx context.Context, event models.IngestionEvent) error
}

// ChannelOutcome reports what happened to one requested channel.
type ChannelOutcome struct {
	Identifier   string             `json:"identifier"`
	ChannelID    string             `json:"channelId,omitempty"`
	ChannelTitle string             `json:"channelTitle,omitempty"`
	Reason       youtube.ReasonCode `json:"reason"`
	VideoCount   int                `json:"videoCount"`
}

type IngestionResult struct {
	Channels   []ChannelOutcome            `json:"channels"`
	Videos     []models.Video              `json:"videos"`
	Categories []models.CategoryWithVideos `json:"categories"`
}

type IngestionService struct {
	resolver    ChannelResolver
	enumerator  UploadEnumerator
	videoStore  store.VideoStore
	recorder    IngestionRecorder
	logger      *logrus.Logger
	concurrency int
}

// NewIngestionService wires the pipeline. recorder may be nil.
func NewIngestionService(resolver ChannelResolver, enumerator UploadEnumerator, videoStore store.VideoStore, recorder IngestionRecorder, logger *logrus.Logger) *IngestionService {
	return &IngestionService{
		resolver:    resolver,
		enumerator:  enumerator,
		videoStore:  videoStore,
		recorder:    recorder,
		logger:      logger,
		concurrency: DefaultChannelConcurrency,
	}
}

type channelIngest struct {
	outcome ChannelOutcome
	videos  []models.Video
}

// IngestChannels resolves and enumerates every identifier, saves everything
// that was fetched and categorizes the saved records. Channels that fail
// contribute no videos; only a persistence failure is returned as an error.
func (s *IngestionService) IngestChannels(ctx context.Context, identifiers []string) (*IngestionResult, error) {
	results := make([]channelIngest, len(identifiers))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, identifier := range identifiers {
		g.Go(func() error {
			results[i] = s.ingestChannel(ctx, identifier)
			return nil
		})
	}
	_ = g.Wait()

	result := &IngestionResult{
		Channels:   make([]ChannelOutcome, 0, len(results)),
		Videos:     []models.Video{},
		Categories: []models.CategoryWithVideos{},
	}

	fetched := []models.Video{}
	for _, r := range results {
		result.Channels = append(result.Channels, r.outcome)
		fetched = append(fetched, r.videos...)
	}

	if len(fetched) == 0 {
		return result, nil
	}

	saved, err := s.videoStore.SaveVideos(ctx, fetched)
	if err != nil {
		return nil, errors.Wrap(err, "save videos")
	}

	result.Videos = saved
	result.Categories = CategorizeVideos(saved)

	s.logger.WithFields(logrus.Fields{
		"channels":   len(identifiers),
		"fetched":    len(fetched),
		"saved":      len(saved),
		"categories": len(result.Categories),
	}).Info("ingested channels")

	return result, nil
}

func (s *IngestionService) ingestChannel(ctx context.Context, identifier string) channelIngest {
	started := time.Now()
	out := channelIngest{outcome: ChannelOutcome{Identifier: identifier}}

	resolution := s.resolver.Resolve(ctx, identifier)
	out.outcome.Reason = resolution.Reason
	if !resolution.Reason.OK() {
		s.record(ctx, out.outcome, started)
		return out
	}
	out.outcome.ChannelID = resolution.ChannelID

	enumeration := s.enumerator.Enumerate(ctx, resolution.ChannelID)
	out.outcome.Reason = enumeration.Reason
	out.outcome.ChannelTitle = enumeration.ChannelTitle
	out.outcome.VideoCount = len(enumeration.Videos)
	out.videos = enumeration.Videos

	s.record(ctx, out.outcome, started)
	return out
}

func (s *IngestionService) record(ctx context.Context, outcome ChannelOutcome, started time.Time) {
	log := s.logger.WithFields(logrus.Fields{
		"identifier": outcome.Identifier,
		"channel_id": outcome.ChannelID,
		"reason":     outcome.Reason,
		"videos":     outcome.VideoCount,
	})
	if !outcome.Reason.OK() {
		log.Warn("channel contributed no videos")
	}

	if s.recorder == nil {
		return
	}

	event := models.IngestionEvent{
		Id:          uuid.New(),
		Identifier:  outcome.Identifier,
		Channel_ID:  outcome.ChannelID,
		Status:      string(outcome.Reason),
		Video_Count: uint32(outcome.VideoCount),
		Started_At:  started.UTC(),
		Duration_Ms: uint64(time.Since(started).Milliseconds()),
	}
	if err := s.recorder.RecordIngestion(ctx, event); err != nil {
		log.WithError(err).Warn("failed to record ingestion event")
	}
}

// ResolveChannels resolves identifiers concurrently and returns the channel
// IDs that resolved, in request order.
func (s *IngestionService) ResolveChannels(ctx context.Context, identifiers []string) []string {
	resolutions := make([]youtube.Resolution, len(identifiers))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, identifier := range identifiers {
		g.Go(func() error {
			resolutions[i] = s.resolver.Resolve(ctx, identifier)
			return nil
		})
	}
	_ = g.Wait()

	channelIDs := []string{}
	seen := map[string]bool{}
	for _, r := range resolutions {
		if !r.Reason.OK() {
			s.logger.WithFields(logrus.Fields{
				"identifier": r.Identifier,
				"reason":     r.Reason,
			}).Warn("skipping unresolvable channel identifier")
			continue
		}
		if seen[r.ChannelID] {
			continue
		}
		seen[r.ChannelID] = true
		channelIDs = append(channelIDs, r.ChannelID)
	}
	return channelIDs
}
