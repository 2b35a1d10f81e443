package models

import (
	"time"

	"github.com/google/uuid"
)

// IngestionEvent records the outcome of enumerating one channel.
type IngestionEvent struct {
	Id          uuid.UUID `json:"id" ch:"id"`
	Identifier  string    `json:"identifier" ch:"identifier"`
	Channel_ID  string    `json:"channelId" ch:"channel_id"`
	Status      string    `json:"status" ch:"status"`
	Video_Count uint32    `json:"videoCount" ch:"video_count"`
	Started_At  time.Time `json:"startedAt" ch:"started_at"`
	Duration_Ms uint64    `json:"durationMs" ch:"duration_ms"`
}
