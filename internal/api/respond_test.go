package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/feed"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found",
			err:         apperr.NotFound("post"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "post not found",
		},
		{
			name:        "forbidden",
			err:         apperr.Forbidden("cannot view this profile"),
			wantStatus:  http.StatusForbidden,
			wantMessage: "cannot view this profile",
		},
		{
			name:        "conflict",
			err:         apperr.Conflict("you have already liked this post"),
			wantStatus:  http.StatusConflict,
			wantMessage: "you have already liked this post",
		},
		{
			name:        "validation",
			err:         apperr.Validation("invalid page"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid page",
		},
		{
			name:       "plain error stays generic",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			// The database detail must never reach the client
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext("/api/posts/1")
			respondError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 20},
		{name: "explicit", query: "?page=3&limit=50", wantPage: 3, wantLimit: 50},
		{name: "limit clamped", query: "?page=2&limit=500", wantPage: 2, wantLimit: 100},
		{name: "negative page", query: "?page=-1&limit=0", wantPage: 1, wantLimit: 20},
		{name: "garbage", query: "?page=abc&limit=xyz", wantPage: 1, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext("/api/activities/feed" + tt.query)
			page := pageFromQuery(c)

			if page.Page != tt.wantPage || page.Limit != tt.wantLimit {
				t.Errorf("page = %d/%d, want %d/%d", page.Page, page.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantID  int64
		wantErr bool
	}{
		{name: "valid", value: "42", wantID: 42},
		{name: "zero", value: "0", wantErr: true},
		{name: "negative", value: "-3", wantErr: true},
		{name: "non numeric", value: "abc", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext("/api/posts/" + tt.value)
			c.Params = gin.Params{{Key: "id", Value: tt.value}}

			id, err := idParam(c, "id")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if apperr.From(err).Kind != apperr.KindValidation {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("idParam() error: %v", err)
			}
			if id != tt.wantID {
				t.Errorf("id = %d, want %d", id, tt.wantID)
			}
		})
	}
}

func TestListEnvelope(t *testing.T) {
	p := feed.NewPagination(5, feed.NewPage(1, 2))
	env := listEnvelope("posts retrieved", "posts", []string{"a", "b"}, p)

	if env["message"] != "posts retrieved" {
		t.Errorf("message = %v", env["message"])
	}
	if _, ok := env["posts"]; !ok {
		t.Error("items field should use the given name")
	}
	got, ok := env["pagination"].(feed.Pagination)
	if !ok {
		t.Fatal("pagination field missing")
	}
	if got.Pages != 3 {
		t.Errorf("pages = %d, want 3", got.Pages)
	}
}
