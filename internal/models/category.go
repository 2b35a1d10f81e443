package models

const UncategorizedID = "Uncategorized"

type CategoryWithVideos struct {
	Id     string  `json:"id"`
	Name   string  `json:"name"`
	Videos []Video `json:"videos"`
}
