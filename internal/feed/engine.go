// Package feed manages the paginated event feed: initial load, incremental
// pagination, and optimistic likes.
//
// Responses are applied under a generation token. Refresh bumps the
// generation, so a page requested before the refresh can never be appended to
// the refreshed list; it is discarded when it arrives.
package feed

import (
	"context"
	"log"
	"sync"

	"kotekapu/client/internal/api"
)

// API is the backend surface the engine needs.
type API interface {
	GetRecommendedFeed(ctx context.Context, token string, limit, offset int) (*api.FeedResponse, error)
	LikePost(ctx context.Context, token string, req api.LikeRequest) error
}

// Session provides the credentials attached to feed calls.
type Session interface {
	Token() string
	UserID() int
}

// State is a snapshot of the feed at one point. Offset always equals
// len(Posts), so the next page request continues exactly where the list ends.
type State struct {
	Posts            []api.Post
	Offset           int
	IsLoadingInitial bool
	IsLoadingMore    bool
	HasMore          bool
	LastError        string
}

// Engine serializes feed mutations. The lock is released during network calls;
// the generation check decides whether a returning response still applies.
type Engine struct {
	client  API
	session Session

	pageSize          int
	morePageSize      int
	placeholderOnFail bool

	mu    sync.Mutex
	gen   uint64
	state State
	seen  map[int]struct{}
}

// NewEngine returns an Engine that loads pageSize posts on refresh and
// morePageSize posts per additional page. When placeholderOnFail is set, a
// failed refresh shows built-in sample posts instead of an empty list.
func NewEngine(client API, session Session, pageSize, morePageSize int, placeholderOnFail bool) *Engine {
	return &Engine{
		client:            client,
		session:           session,
		pageSize:          pageSize,
		morePageSize:      morePageSize,
		placeholderOnFail: placeholderOnFail,
		state:             State{HasMore: true},
		seen:              make(map[int]struct{}),
	}
}

// Snapshot returns a copy of the current feed state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Posts = append([]api.Post(nil), e.state.Posts...)
	return s
}

// ClearError drops the last error message.
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.state.LastError = ""
	e.mu.Unlock()
}

// Refresh replaces the feed with the first page. It invalidates every page
// request still in flight; their responses are discarded on arrival. On
// failure the list either falls back to placeholder posts or is left empty,
// in both cases with pagination stopped and the error recorded.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.state.IsLoadingInitial = true
	e.state.LastError = ""
	token := e.session.Token()
	limit := e.pageSize
	e.mu.Unlock()

	resp, err := e.client.GetRecommendedFeed(ctx, token, limit, 0)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		// A newer refresh owns the state now.
		return err
	}
	e.state.IsLoadingInitial = false

	if err != nil {
		e.state.LastError = err.Error()
		e.state.HasMore = false
		if e.placeholderOnFail {
			e.replaceLocked(placeholderPosts())
		} else {
			e.replaceLocked(nil)
		}
		return err
	}

	e.replaceLocked(resp.Posts)
	e.state.HasMore = hasMore(resp, len(resp.Posts), limit)
	return nil
}

// LoadMore fetches the next page and appends it. It is a no-op while another
// load is running, while a refresh is running, or once the feed is exhausted.
// A page that returns after a newer refresh is discarded.
func (e *Engine) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	if e.state.IsLoadingMore || e.state.IsLoadingInitial || !e.state.HasMore {
		e.mu.Unlock()
		return nil
	}
	e.gen++ // invalidate any discarded in-flight page with the same offset
	gen := e.gen
	e.state.IsLoadingMore = true
	token := e.session.Token()
	limit := e.morePageSize
	offset := e.state.Offset
	e.mu.Unlock()

	resp, err := e.client.GetRecommendedFeed(ctx, token, limit, offset)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.IsLoadingMore = false
	if gen != e.gen {
		return err
	}

	if err != nil {
		log.Printf("feed: load more: %v", err)
		return err
	}
	if len(resp.Posts) == 0 {
		e.state.HasMore = false
		return nil
	}
	e.appendLocked(resp.Posts)
	e.state.HasMore = hasMore(resp, len(resp.Posts), limit)
	return nil
}

// Like optimistically increments the like counter for the post, then reports
// the like with the post's tags. A failed report keeps the optimistic count;
// the next refresh reconciles with the server.
func (e *Engine) Like(ctx context.Context, postID int) error {
	e.mu.Lock()
	var liked *api.Post
	for i := range e.state.Posts {
		if e.state.Posts[i].ID == postID {
			e.state.Posts[i].Likes++
			liked = &e.state.Posts[i]
			break
		}
	}
	if liked == nil {
		e.mu.Unlock()
		return nil
	}
	req := api.LikeRequest{
		UserID:       e.session.UserID(),
		PostID:       postID,
		InterestTags: append([]string(nil), liked.InterestTags...),
		FormatTags:   append([]string(nil), liked.FormatTags...),
	}
	token := e.session.Token()
	e.mu.Unlock()

	if err := e.client.LikePost(ctx, token, req); err != nil {
		log.Printf("feed: like post %d: %v", postID, err)
		e.mu.Lock()
		e.state.LastError = err.Error()
		e.mu.Unlock()
		return err
	}
	return nil
}

// replaceLocked resets the list to posts and rebuilds the dedupe index.
func (e *Engine) replaceLocked(posts []api.Post) {
	e.state.Posts = e.state.Posts[:0]
	e.seen = make(map[int]struct{}, len(posts))
	e.appendLocked(posts)
}

// appendLocked adds posts, skipping ids already in the list, and keeps
// Offset equal to the list length.
func (e *Engine) appendLocked(posts []api.Post) {
	for _, p := range posts {
		if _, dup := e.seen[p.ID]; dup {
			continue
		}
		e.seen[p.ID] = struct{}{}
		e.state.Posts = append(e.state.Posts, p)
	}
	e.state.Offset = len(e.state.Posts)
}

// hasMore prefers the server's flag and falls back to a full-page heuristic
// for backends that do not send it.
func hasMore(resp *api.FeedResponse, got, limit int) bool {
	if resp.HasMore != nil {
		return *resp.HasMore
	}
	return got >= limit
}
