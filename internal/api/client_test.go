package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 2*time.Second, 5*time.Second, "device-1")
	return c, srv
}

func TestClient_Ping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ping" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"message":"pong","status":"ok"}`))
	})

	out, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if out.Message != "pong" || out.Status != "ok" {
		t.Errorf("Ping = %+v, want pong/ok", out)
	}
}

func TestClient_Login_SendsCredentialsAndHeaders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			t.Errorf("path = %q, want /api/login", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("X-Device-Id"); got != "device-1" {
			t.Errorf("X-Device-Id = %q, want device-1", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("login should not send Authorization, got %q", got)
		}
		w.Write([]byte(`{
			"message": "ok",
			"user": {"id": 7, "email": "a@b.c", "first_name": "A", "last_name": "B",
			         "profile_completed": true, "preferences_completed": false},
			"access_token": "tok-7"
		}`))
	})

	out, err := c.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if out.AccessToken != "tok-7" || out.User.ID != 7 {
		t.Errorf("Login = %+v, want token tok-7 user 7", out)
	}
	if !out.User.ProfileCompleted || out.User.PreferencesCompleted {
		t.Errorf("completion flags = %+v, want profile=true preferences=false", out.User)
	}
}

func TestClient_GetRecommendedFeed_SendsBearerAndPagination(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/feed/recommended" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		q := r.URL.Query()
		if q.Get("limit") != "10" || q.Get("offset") != "20" {
			t.Errorf("query = %v, want limit=10 offset=20", q)
		}
		w.Write([]byte(`{"posts":[{"id":1,"title":"t","description":"d"}],"count":1,"has_more":true}`))
	})

	out, err := c.GetRecommendedFeed(context.Background(), "tok", 10, 20)
	if err != nil {
		t.Fatalf("GetRecommendedFeed: %v", err)
	}
	if len(out.Posts) != 1 || out.Posts[0].ID != 1 {
		t.Errorf("posts = %+v, want one post with id 1", out.Posts)
	}
	if out.HasMore == nil || !*out.HasMore {
		t.Errorf("HasMore = %v, want true", out.HasMore)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"internal server error", 500, `{"error":"boom"}`, ErrInternalServer, "internal server error: boom"},
		{"unauthorized", 401, `{"error":"bad token"}`, ErrUnauthorized, "unauthorized: bad token"},
		{"not found", 404, `{"error":"no such post"}`, ErrNotFound, "not found: no such post"},
		{"other status", 403, `{"error":"forbidden"}`, nil, "server error: 403: forbidden"},
		{"no error body", 500, `oops`, ErrInternalServer, "internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.GetFeed(context.Background(), "tok")
			if err == nil {
				t.Fatal("GetFeed should fail")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want category %v", err, tc.wantErr)
			}
			if err.Error() != tc.wantMsg {
				t.Errorf("err = %q, want %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestClient_DecodeFailureIsDataProcessingError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})

	_, err := c.Ping(context.Background())
	if !errors.Is(err, ErrDataProcessing) {
		t.Fatalf("err = %v, want ErrDataProcessing", err)
	}
	if !strings.Contains(err.Error(), "not json") {
		t.Errorf("err = %q, want body excerpt included", err.Error())
	}
}

func TestClient_LikePost_SendsTagPayload(t *testing.T) {
	var gotBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts/like" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Write([]byte(`{"message":"liked"}`))
	})

	err := c.LikePost(context.Background(), "tok", LikeRequest{
		UserID:       3,
		PostID:       11,
		InterestTags: []string{"tech"},
		FormatTags:   []string{"offline"},
	})
	if err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	for _, want := range []string{`"user_id":3`, `"post_id":11`, `"interest_tags":["tech"]`, `"format_tags":["offline"]`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("body = %s, missing %s", gotBody, want)
		}
	}
}

func TestClient_CompleteProfile_UnwrapsUserEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/5/complete-profile" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"message":"done","user":{"id":5,"email":"x@y.z","first_name":"X","last_name":"Y","profile_completed":true}}`))
	})

	age := 21
	user, err := c.CompleteProfile(context.Background(), "tok", 5, CompleteProfileRequest{AgeUser: &age})
	if err != nil {
		t.Fatalf("CompleteProfile: %v", err)
	}
	if user.ID != 5 || !user.ProfileCompleted {
		t.Errorf("user = %+v, want id 5 with profile completed", user)
	}
}

func TestClient_Search_PostsQueryAndFilters(t *testing.T) {
	var gotBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		buf := make([]byte, 2048)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Write([]byte(`{"events":[],"organizations":[],"total_events":0,"total_organizations":0}`))
	})

	_, err := c.Search(context.Background(), "tok", SearchRequest{
		Query:   "hackathon",
		Filters: &SearchFilters{Interests: []string{"tech"}},
		Limit:   20,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, want := range []string{`"query":"hackathon"`, `"interests":["tech"]`, `"limit":20`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("body = %s, missing %s", gotBody, want)
		}
	}
}

func TestClient_RegisterForEvent_UsesEventPath(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events/9/register" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"message":"registered","event":{"id":9,"title":"t","description":"d"}}`))
	})

	out, err := c.RegisterForEvent(context.Background(), "tok", 9)
	if err != nil {
		t.Fatalf("RegisterForEvent: %v", err)
	}
	if out.Event.ID != 9 {
		t.Errorf("event id = %d, want 9", out.Event.ID)
	}
}

func TestClient_CreateEvent_UsesOrganisationPath(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/organisations/4/events" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"created","event":{"id":12,"title":"t","description":"d"}}`))
	})

	out, err := c.CreateEvent(context.Background(), "tok", 4, CreateEventRequest{
		Title:       "t",
		Description: "d",
		DateTime:    "2026-09-01T18:00:00Z",
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if out.Event.ID != 12 {
		t.Errorf("event id = %d, want 12", out.Event.ID)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Ping(ctx)
	if err == nil {
		t.Fatal("Ping should fail when the context expires")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}
