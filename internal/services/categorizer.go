package services

import (
	"sort"

	"github.com/grvbrk/yt-categorizer/internal/models"
)

// categoryNames is the upstream videoCategories taxonomy. Codes missing from
// the 1..44 range are unassigned upstream.
var categoryNames = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"18": "Short Movies",
	"19": "Travel & Events",
	"20": "Gaming",
	"21": "Videoblogging",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
	"30": "Movies",
	"31": "Anime/Animation",
	"32": "Action/Adventure",
	"33": "Classics",
	"34": "Comedy",
	"35": "Documentary",
	"36": "Drama",
	"37": "Family",
	"38": "Foreign",
	"39": "Horror",
	"40": "Sci-Fi/Fantasy",
	"41": "Thriller",
	"42": "Shorts",
	"43": "Shows",
	"44": "Trailers",
}

func CategoryName(id string) string {
	if id == models.UncategorizedID {
		return models.UncategorizedID
	}
	if name, ok := categoryNames[id]; ok {
		return name
	}
	return "Category " + id
}

// CategorizeVideos buckets videos by category, largest bucket first. Buckets
// of equal size keep the order in which their first video appeared, and each
// bucket keeps its videos in input order.
func CategorizeVideos(videos []models.Video) []models.CategoryWithVideos {
	categories := []models.CategoryWithVideos{}
	index := map[string]int{}

	for _, v := range videos {
		key := v.CategoryKey()
		i, ok := index[key]
		if !ok {
			i = len(categories)
			index[key] = i
			categories = append(categories, models.CategoryWithVideos{
				Id:     key,
				Name:   CategoryName(key),
				Videos: []models.Video{},
			})
		}
		categories[i].Videos = append(categories[i].Videos, v)
	}

	sort.SliceStable(categories, func(a, b int) bool {
		return len(categories[a].Videos) > len(categories[b].Videos)
	})

	return categories
}
