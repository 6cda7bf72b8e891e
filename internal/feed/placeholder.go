package feed

import "kotekapu/client/internal/api"

func strPtr(s string) *string   { return &s }
func intPtr(n int) *int         { return &n }
func f64Ptr(f float64) *float64 { return &f }

// placeholderPosts is shown when a refresh fails and the fallback is enabled,
// so the feed screen is never empty on first launch without connectivity.
func placeholderPosts() []api.Post {
	return []api.Post{
		{
			ID:             1,
			Title:          "Mobile development hackathon",
			Description:    "A competition for building mobile apps with a prize pool",
			DateTime:       strPtr("2024-01-15T14:00:00"),
			CreatedAt:      strPtr("2024-01-01T10:00:00"),
			InterestTags:   []string{"IT", "Programming", "Mobile development"},
			FormatTags:     []string{"offline"},
			OrganizationID: intPtr(1),
			Type:           "event",
			RelevanceScore: f64Ptr(0.85),
			Likes:          5,
		},
		{
			ID:             2,
			Title:          "Online Kotlin course",
			Description:    "Learn a modern programming language for Android development",
			DateTime:       strPtr("2024-01-20T16:00:00"),
			CreatedAt:      strPtr("2024-01-02T11:00:00"),
			InterestTags:   []string{"IT", "Programming", "Kotlin"},
			FormatTags:     []string{"online"},
			OrganizationID: intPtr(2),
			Type:           "event",
			RelevanceScore: f64Ptr(0.75),
			Likes:          3,
		},
		{
			ID:             3,
			Title:          "UI/UX design workshop",
			Description:    "A hands-on session on building user interfaces",
			DateTime:       strPtr("2024-01-25T12:00:00"),
			CreatedAt:      strPtr("2024-01-03T09:00:00"),
			InterestTags:   []string{"Design", "Creativity", "UI/UX"},
			FormatTags:     []string{"offline"},
			OrganizationID: intPtr(3),
			Type:           "event",
			RelevanceScore: f64Ptr(0.65),
			Likes:          8,
		},
	}
}
