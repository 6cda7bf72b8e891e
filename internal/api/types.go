package api

// User is the backend user record. profile_completed and preferences_completed
// drive the post-login onboarding decision.
type User struct {
	ID                   int                `json:"id"`
	Email                string             `json:"email"`
	FirstName            string             `json:"first_name"`
	LastName             string             `json:"last_name"`
	AgeUser              *int               `json:"age_user"`
	Placement            *string            `json:"placement"`
	StudyPlace           *string            `json:"study_place"`
	Exp                  int                `json:"exp"`
	Avatar               *string            `json:"avatar"`
	InterestsMetrics     map[string]float64 `json:"interests_metrics"`
	FormatMetrics        map[string]float64 `json:"format_metrics"`
	ProfileCompleted     bool               `json:"profile_completed"`
	PreferencesCompleted bool               `json:"preferences_completed"`
	CreatedAt            *string            `json:"created_at"`
}

// Post is one feed item, normally an event announcement.
type Post struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	DateTime           *string  `json:"date_time,omitempty"`
	CreatedAt          *string  `json:"created_at,omitempty"`
	Pic                *string  `json:"pic,omitempty"`
	InterestTags       []string `json:"interest_tags,omitempty"`
	FormatTags         []string `json:"format_tags,omitempty"`
	OrganizationID     *int     `json:"organization_id,omitempty"`
	AuthorID           *int     `json:"author_id,omitempty"`
	Type               string   `json:"type,omitempty"`
	RelevanceScore     *float64 `json:"relevance_score,omitempty"`
	Likes              int      `json:"likes"`
	OrganizationName   *string  `json:"organization_name,omitempty"`
	OrganizationAvatar *string  `json:"organization_avatar,omitempty"`
	Location           *string  `json:"location,omitempty"`
	EventType          *string  `json:"event_type,omitempty"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Message     string `json:"message"`
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// FeedResponse carries one page of posts. HasMore is nil on older backends;
// callers fall back to comparing the page size against len(Posts).
type FeedResponse struct {
	Posts   []Post  `json:"posts"`
	Count   int     `json:"count"`
	Total   *int    `json:"total,omitempty"`
	Offset  *int    `json:"offset,omitempty"`
	Limit   *int    `json:"limit,omitempty"`
	HasMore *bool   `json:"has_more,omitempty"`
	Message *string `json:"message,omitempty"`
}

// LikeRequest reports a like together with the tags of the liked post so the
// backend can update the user's interest metrics in the same call.
type LikeRequest struct {
	UserID       int      `json:"user_id"`
	PostID       int      `json:"post_id"`
	InterestTags []string `json:"interest_tags"`
	FormatTags   []string `json:"format_tags"`
}

// UserInterests is the per-user tag weighting used by the recommender.
type UserInterests struct {
	InterestsMetrics map[string]float64 `json:"interests_metrics"`
	FormatMetrics    map[string]float64 `json:"format_metrics"`
}

type CompleteProfileRequest struct {
	Phone       *string `json:"phone,omitempty"`
	AgeUser     *int    `json:"age_user,omitempty"`
	Placement   *string `json:"placement,omitempty"`
	StudyPlace  *string `json:"study_place,omitempty"`
	GradeCourse *string `json:"grade_course,omitempty"`
}

type CompletePreferencesRequest struct {
	Interests  []string `json:"interests"`
	Formats    []string `json:"formats"`
	EventTypes []string `json:"event_types"`
}

// PreferencesResponse lists the categories the preferences screen offers.
type PreferencesResponse struct {
	InterestCategories []string `json:"interest_categories"`
	FormatTypes        []string `json:"format_types"`
	EventTypes         []string `json:"event_types"`
}

type EventRegistrationResponse struct {
	Message string `json:"message"`
	Event   Post   `json:"event"`
}

type Organisation struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Avatar           *string  `json:"avatar"`
	City             *string  `json:"city"`
	Status           string   `json:"status"`
	Tags             []string `json:"tags"`
	SocialLinks      []string `json:"social_links"`
	EventsCount      int      `json:"events_count"`
	SubscribersCount int      `json:"subscribers_count"`
	OwnerID          int      `json:"owner_id"`
}

type CreateOrganisationRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	City        *string  `json:"city,omitempty"`
	Avatar      *string  `json:"avatar,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	SocialLinks []string `json:"social_links,omitempty"`
}

type UpdateOrganisationRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	City        *string  `json:"city,omitempty"`
	Avatar      *string  `json:"avatar,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	SocialLinks []string `json:"social_links,omitempty"`
}

// CreateEventRequest creates an event under an approved organisation.
// Title, Description, and DateTime are required by the backend.
type CreateEventRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	DateTime     string   `json:"date_time"`
	Location     *string  `json:"location,omitempty"`
	EventType    *string  `json:"event_type,omitempty"`
	InterestTags []string `json:"interest_tags,omitempty"`
	FormatTags   []string `json:"format_tags,omitempty"`
	Pic          *string  `json:"pic,omitempty"`
}

type CreateEventResponse struct {
	Message string `json:"message"`
	Event   Post   `json:"event"`
}

// SearchFilters narrows a search. Zero-valued fields are omitted from the request.
type SearchFilters struct {
	Interests      []string `json:"interests,omitempty"`
	Formats        []string `json:"formats,omitempty"`
	EventTypes     []string `json:"event_types,omitempty"`
	DateFrom       *string  `json:"date_from,omitempty"`
	DateTo         *string  `json:"date_to,omitempty"`
	Location       *string  `json:"location,omitempty"`
	OrganizationID *int     `json:"organization_id,omitempty"`
}

type SearchRequest struct {
	Query   string         `json:"query"`
	Filters *SearchFilters `json:"filters,omitempty"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

type SearchResponse struct {
	Events             []Post         `json:"events"`
	Organizations      []Organisation `json:"organizations"`
	TotalEvents        int            `json:"total_events"`
	TotalOrganizations int            `json:"total_organizations"`
}

// ProfileStats summarises activity shown on the profile screen.
type ProfileStats struct {
	EventsAttended     int `json:"events_attended"`
	EventsCreated      int `json:"events_created"`
	OrganizationsCount int `json:"organizations_count"`
	LikesGiven         int `json:"likes_given"`
	Exp                int `json:"exp"`
	Level              int `json:"level"`
}

type Achievement struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Points      int     `json:"points"`
	EarnedAt    *string `json:"earned_at"`
}

type ProfileResponse struct {
	User         User          `json:"user"`
	Stats        ProfileStats  `json:"stats"`
	Achievements []Achievement `json:"achievements"`
}

type PingResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ConnectionTestResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
