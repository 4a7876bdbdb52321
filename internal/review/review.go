// Package review computes rating summaries over a station's reviews.
package review

import "github.com/tapfinder/tapstations/internal/models"

// Summary is the aggregate shown next to a station: the mean rating and how
// many reviews produced it.
type Summary struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// Summarize recomputes the summary from a full review list. An empty list
// yields a zero average, matching the "no reviews yet" display.
func Summarize(reviews []models.Review) Summary {
	if len(reviews) == 0 {
		return Summary{}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	return Summary{
		AverageRating: float64(sum) / float64(len(reviews)),
		TotalReviews:  len(reviews),
	}
}
