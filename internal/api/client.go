// Package api is the HTTP client for the event platform backend.
//
// Every call classifies failures into a small set of stable error categories
// so callers can branch on errors.Is instead of parsing status codes or
// backend-specific messages.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Error categories. Wrapped errors carry detail; the category is stable.
var (
	// ErrInternalServer covers HTTP 500 responses.
	ErrInternalServer = errors.New("internal server error")
	// ErrUnauthorized covers HTTP 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound covers HTTP 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrDataProcessing covers 2xx responses whose body cannot be decoded.
	ErrDataProcessing = errors.New("data processing error")
)

const maxErrorExcerpt = 200

// errorBody is the backend's uniform error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// Client talks to the backend over HTTP with JSON bodies.
type Client struct {
	baseURL  string
	deviceID string
	httpc    *http.Client

	tracer   trace.Tracer
	requests metric.Int64Counter
}

// New returns a Client for the given base URL. connectTimeout bounds dialing
// only; requestTimeout bounds the whole call including the body read. deviceID
// is attached to every request as X-Device-Id.
func New(baseURL string, connectTimeout, requestTimeout time.Duration, deviceID string) *Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext:       dialer.DialContext,
		ForceAttemptHTTP2: true,
	}

	requests, err := otel.Meter("kotekapu.api").Int64Counter("api.client.requests",
		metric.WithDescription("Backend requests by operation and outcome"))
	if err != nil {
		requests = nil
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		deviceID: deviceID,
		httpc: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
		tracer:   otel.Tracer("kotekapu.api"),
		requests: requests,
	}
}

// Ping checks backend liveness.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	var out PingResponse
	if err := c.do(ctx, "ping", http.MethodGet, "/api/ping", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestConnection fetches the diagnostic endpoint with a server timestamp.
func (c *Client) TestConnection(ctx context.Context) (*ConnectionTestResponse, error) {
	var out ConnectionTestResponse
	if err := c.do(ctx, "test_connection", http.MethodGet, "/api/test/connection", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns the fresh session token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "register", http.MethodPost, "/api/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns the session token plus the user record,
// including the onboarding completion flags.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFeed returns the unpersonalised feed.
func (c *Client) GetFeed(ctx context.Context, token string) (*FeedResponse, error) {
	var out FeedResponse
	if err := c.do(ctx, "get_feed", http.MethodGet, "/api/feed", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecommendedFeed returns a personalised feed page.
func (c *Client) GetRecommendedFeed(ctx context.Context, token string, limit, offset int) (*FeedResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out FeedResponse
	if err := c.do(ctx, "get_recommended_feed", http.MethodGet, "/api/feed/recommended?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSimpleFeed returns the unauthenticated diagnostic feed.
func (c *Client) GetSimpleFeed(ctx context.Context) (*FeedResponse, error) {
	var out FeedResponse
	if err := c.do(ctx, "get_simple_feed", http.MethodGet, "/api/test/simple-feed", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LikePost records a like together with the liked post's tags so the backend
// can fold them into the user's interest metrics.
func (c *Client) LikePost(ctx context.Context, token string, req LikeRequest) error {
	return c.do(ctx, "like_post", http.MethodPost, "/api/posts/like", token, req, nil)
}

// GetUserInterests returns the recommender's tag weights for the user.
func (c *Client) GetUserInterests(ctx context.Context, token string, userID int) (*UserInterests, error) {
	var out UserInterests
	path := fmt.Sprintf("/api/users/%d/interests", userID)
	if err := c.do(ctx, "get_user_interests", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserProfile returns the user's record, activity stats, and achievements.
func (c *Client) GetUserProfile(ctx context.Context, token string, userID int) (*ProfileResponse, error) {
	var out ProfileResponse
	path := fmt.Sprintf("/api/users/%d/profile", userID)
	if err := c.do(ctx, "get_user_profile", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteProfile submits the profile onboarding step.
func (c *Client) CompleteProfile(ctx context.Context, token string, userID int, req CompleteProfileRequest) (*User, error) {
	var out struct {
		Message string `json:"message"`
		User    User   `json:"user"`
	}
	path := fmt.Sprintf("/api/users/%d/complete-profile", userID)
	if err := c.do(ctx, "complete_profile", http.MethodPost, path, token, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// GetPreferenceCategories lists the options for the preferences onboarding step.
func (c *Client) GetPreferenceCategories(ctx context.Context) (*PreferencesResponse, error) {
	var out PreferencesResponse
	if err := c.do(ctx, "get_preference_categories", http.MethodGet, "/api/preferences/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompletePreferences submits the preferences onboarding step.
func (c *Client) CompletePreferences(ctx context.Context, token string, userID int, req CompletePreferencesRequest) (*User, error) {
	var out struct {
		Message string `json:"message"`
		User    User   `json:"user"`
	}
	path := fmt.Sprintf("/api/users/%d/complete-preferences", userID)
	if err := c.do(ctx, "complete_preferences", http.MethodPost, path, token, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// RegisterForEvent signs the current user up for the event.
func (c *Client) RegisterForEvent(ctx context.Context, token string, eventID int) (*EventRegistrationResponse, error) {
	var out EventRegistrationResponse
	path := fmt.Sprintf("/api/events/%d/register", eventID)
	if err := c.do(ctx, "register_for_event", http.MethodPost, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEvent publishes an event under the organisation. Only the approved
// organisation's owner may call this.
func (c *Client) CreateEvent(ctx context.Context, token string, orgID int, req CreateEventRequest) (*CreateEventResponse, error) {
	var out CreateEventResponse
	path := fmt.Sprintf("/api/organisations/%d/events", orgID)
	if err := c.do(ctx, "create_event", http.MethodPost, path, token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrganisation submits a new organisation for moderation.
func (c *Client) CreateOrganisation(ctx context.Context, token string, req CreateOrganisationRequest) (*Organisation, error) {
	var out struct {
		Message      string       `json:"message"`
		Organisation Organisation `json:"organisation"`
	}
	if err := c.do(ctx, "create_organisation", http.MethodPost, "/api/organisations", token, req, &out); err != nil {
		return nil, err
	}
	return &out.Organisation, nil
}

// UpdateOrganisation edits the organisation's public details.
func (c *Client) UpdateOrganisation(ctx context.Context, token string, orgID int, req UpdateOrganisationRequest) (*Organisation, error) {
	var out struct {
		Message      string       `json:"message"`
		Organisation Organisation `json:"organisation"`
	}
	path := fmt.Sprintf("/api/organisations/%d", orgID)
	if err := c.do(ctx, "update_organisation", http.MethodPut, path, token, req, &out); err != nil {
		return nil, err
	}
	return &out.Organisation, nil
}

// SubscribeToOrganisation follows the organisation for the current user.
func (c *Client) SubscribeToOrganisation(ctx context.Context, token string, orgID int) (*MessageResponse, error) {
	var out MessageResponse
	path := fmt.Sprintf("/api/organisations/%d/subscribe", orgID)
	if err := c.do(ctx, "subscribe_to_organisation", http.MethodPost, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search queries events and organisations by text and filters.
func (c *Client) Search(ctx context.Context, token string, req SearchRequest) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.do(ctx, "search", http.MethodPost, "/api/search", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request and decodes the response into out (when non-nil).
// op names the operation for tracing and metrics.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "api."+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.SetStatus(codes.Error, err.Error())
		}
		if c.requests != nil {
			c.requests.Add(ctx, 1, metric.WithAttributes(
				attribute.String("operation", op),
				attribute.String("outcome", outcome),
			))
		}
		span.End()
	}()

	var reqBody io.Reader
	if body != nil {
		raw, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("encode request: %w", merr)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrDataProcessing, err, excerpt(raw))
	}
	return nil
}

// classifyStatus maps a non-2xx status to a stable error category. The
// backend's error message, when present, is attached as detail.
func classifyStatus(status int, body []byte) error {
	var cat error
	switch status {
	case http.StatusInternalServerError:
		cat = ErrInternalServer
	case http.StatusUnauthorized:
		cat = ErrUnauthorized
	case http.StatusNotFound:
		cat = ErrNotFound
	default:
		cat = fmt.Errorf("server error: %d", status)
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return fmt.Errorf("%w: %s", cat, eb.Error)
	}
	return cat
}

func excerpt(raw []byte) string {
	if len(raw) > maxErrorExcerpt {
		raw = raw[:maxErrorExcerpt]
	}
	return string(raw)
}
