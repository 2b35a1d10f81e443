package models

import "time"

type Video struct {
	Id            string    `json:"id" bson:"id"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description" bson:"description"`
	Published_At  string    `json:"publishedAt" bson:"publishedAt"`
	Channel_ID    string    `json:"channelId" bson:"channelId"`
	Channel_Title string    `json:"channelTitle" bson:"channelTitle"`
	Category_ID   *string   `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	Tags          []string  `json:"tags" bson:"tags"`
	Created_At    time.Time `json:"createdAt" bson:"createdAt"`
}

// CategoryKey is the bucket a video is grouped under.
func (v Video) CategoryKey() string {
	if v.Category_ID == nil || *v.Category_ID == "" {
		return UncategorizedID
	}
	return *v.Category_ID
}
