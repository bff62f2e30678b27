package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medcircle/commons/api/internal/model"
)

func TestWriteData_WrapsPayload(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteData(rec, http.StatusCreated, map[string]string{"id": "forum:1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var body DataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok || data["id"] != "forum:1" {
		t.Errorf("unexpected data: %+v", body.Data)
	}
}

func TestWriteCollection_IncludesCount(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteCollection(rec, http.StatusOK, []string{"a", "b", "c"}, 3)

	var body CollectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Count != 3 {
		t.Errorf("expected count 3, got %d", body.Count)
	}
}

func TestWriteError_ProblemJSON(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteError(rec, model.NewNotFoundError("forum"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem+json, got %q", ct)
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"like","bogus":true}`))

	var body model.ReactionRequest
	if err := DecodeJSON(req, &body); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestDecodeJSON_ValidBody(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"dislike"}`))

	var body model.ReactionRequest
	if err := DecodeJSON(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Action != "dislike" {
		t.Errorf("expected dislike, got %q", body.Action)
	}
}

func TestWriteNoContent(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteNoContent(rec)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestUnauthenticatedRoutes_Return401(t *testing.T) {
	t.Parallel()

	// Handlers check the context principal before touching their service,
	// so a nil service is safe here.
	reaction := NewReactionHandler(nil)
	forum := NewForumHandler(nil)
	post := NewPostHandler(nil)
	comment := NewCommentHandler(nil)
	report := NewReportHandler(nil)
	strike := NewStrikeHandler(nil)
	modlog := NewModLogHandler(nil)

	cases := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		path    string
	}{
		{"react to post", reaction.ReactToPost, http.MethodPost, "/v1/posts/p1/reaction"},
		{"create forum", forum.Create, http.MethodPost, "/v1/forums"},
		{"join forum", forum.Join, http.MethodPost, "/v1/forums/f1/join"},
		{"create post", post.Create, http.MethodPost, "/v1/forums/f1/posts"},
		{"approve post", post.Approve, http.MethodPost, "/v1/posts/p1/approve"},
		{"create comment", comment.Create, http.MethodPost, "/v1/posts/p1/comments"},
		{"cascade delete", comment.CascadeDelete, http.MethodDelete, "/v1/comments/c1/cascade"},
		{"create report", report.Create, http.MethodPost, "/v1/reports"},
		{"review report", report.Review, http.MethodPost, "/v1/reports/r1/review"},
		{"issue strike", strike.Issue, http.MethodPost, "/v1/users/u1/strikes"},
		{"moderation log", modlog.List, http.MethodGet, "/v1/moderation/log"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tc.handler(rec, httptest.NewRequest(tc.method, tc.path, nil))

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}
