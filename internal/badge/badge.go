// Package badge awards contribution badges from a user's activity counts.
package badge

// Badge is one entry in the static catalog.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

// Stats are the per-user activity counts badges are computed from.
type Stats struct {
	StationsAdded  int
	ReviewsWritten int
	PeopleHelped   int
}

// Evaluate returns the full catalog with earned flags for the given stats.
func Evaluate(stats Stats) []Badge {
	return []Badge{
		{
			ID:          "1",
			Name:        "First Contributor",
			Description: "Added your first water station!",
			Icon:        "sparkles",
			Earned:      stats.StationsAdded >= 1,
		},
		{
			ID:          "2",
			Name:        "Reviewer Extraordinaire",
			Description: "Submitted 10 reviews for water stations.",
			Icon:        "chatbubbles-outline",
			Earned:      stats.ReviewsWritten >= 10,
		},
		{
			ID:          "3",
			Name:        "Eco-Champion",
			Description: "Contributed to 20 unique water stations.",
			Icon:        "leaf-outline",
			Earned:      stats.StationsAdded >= 20,
		},
		{
			ID:          "4",
			Name:        "Hydration Hero",
			Description: "Helped 50 people find water stations.",
			Icon:        "water-outline",
			Earned:      stats.PeopleHelped >= 50,
		},
	}
}
