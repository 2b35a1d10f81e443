package youtube

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/youtube/v3"
)

// HandleCache remembers which channel ID a handle resolved to.
type HandleCache interface {
	GetChannelID(ctx context.Context, handle string) (string, bool, error)
	SetChannelID(ctx context.Context, handle, channelID string) error
}

type Resolution struct {
	Identifier string
	ChannelID  string
	Reason     ReasonCode
}

// channelMatch is a channel found by one of the two lookup endpoints. The
// handle lookup answers with a flat channel ID, search answers with a nested
// resource ID.
type channelMatch interface {
	channelID() string
	source() string
}

type handleMatch struct {
	ID string
}

func (m handleMatch) channelID() string { return m.ID }
func (m handleMatch) source() string    { return "channels.forHandle" }

type searchMatch struct {
	ID *youtube.ResourceId
}

func (m searchMatch) channelID() string {
	if m.ID == nil {
		return ""
	}
	return m.ID.ChannelId
}
func (m searchMatch) source() string { return "search" }

func decodeHandleResponse(resp *youtube.ChannelListResponse) channelMatch {
	if resp == nil || len(resp.Items) == 0 || resp.Items[0].Id == "" {
		return nil
	}
	return handleMatch{ID: resp.Items[0].Id}
}

func decodeSearchResponse(resp *youtube.SearchListResponse) channelMatch {
	if resp == nil || len(resp.Items) == 0 {
		return nil
	}
	match := searchMatch{ID: resp.Items[0].Id}
	if match.channelID() == "" {
		return nil
	}
	return match
}

type Resolver struct {
	client *Client
	cache  HandleCache
	logger *logrus.Logger
}

// NewResolver builds a resolver. cache may be nil.
func NewResolver(client *Client, cache HandleCache, logger *logrus.Logger) *Resolver {
	return &Resolver{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// Resolve maps a channel ID or "@handle" to a channel ID. Failures are
// reported through Resolution.Reason, never as an error.
func (r *Resolver) Resolve(ctx context.Context, identifier string) Resolution {
	res := Resolution{Identifier: identifier}
	log := r.logger.WithField("identifier", identifier)

	if identifier == "" {
		res.Reason = ReasonInvalidIdentifier
		return res
	}

	if !IsHandle(identifier) {
		res.ChannelID = identifier
		res.Reason = ReasonOK
		return res
	}

	handle := strings.TrimPrefix(identifier, "@")
	if handle == "" {
		res.Reason = ReasonInvalidIdentifier
		return res
	}

	if r.cache != nil {
		channelID, ok, err := r.cache.GetChannelID(ctx, handle)
		if err != nil {
			log.WithError(err).Warn("handle cache lookup failed")
		} else if ok {
			res.ChannelID = channelID
			res.Reason = ReasonOK
			return res
		}
	}

	byHandle, err := r.client.ChannelByHandle(ctx, handle)
	if err != nil {
		log.WithError(err).Error("error resolving channel handle")
		res.Reason = ReasonUpstreamError
		return res
	}

	match := decodeHandleResponse(byHandle)
	if match == nil {
		search, err := r.client.SearchChannel(ctx, handle)
		if err != nil {
			log.WithError(err).Error("error searching for channel")
			res.Reason = ReasonUpstreamError
			return res
		}
		match = decodeSearchResponse(search)
	}

	if match == nil {
		log.Warn("could not resolve channel ID for handle")
		res.Reason = ReasonUnresolved
		return res
	}

	res.ChannelID = match.channelID()
	res.Reason = ReasonOK
	log.WithFields(logrus.Fields{
		"channel_id": res.ChannelID,
		"source":     match.source(),
	}).Debug("resolved channel handle")

	if r.cache != nil {
		if err := r.cache.SetChannelID(ctx, handle, res.ChannelID); err != nil {
			log.WithError(err).Warn("failed to cache resolved handle")
		}
	}

	return res
}
