package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lienzo/lienzo-go/internal/models"
	"github.com/lienzo/lienzo-go/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, Options{Store: session.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestPublicationListSendsQueryParameters(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"content":[],"last":true,"first":true}`))
	}))

	pubs := NewPublicationService(client)
	_, err := pubs.List(context.Background(), ListOptions{
		Pageable: Pageable{Page: 2, Size: 10, Sort: []string{"createdAt,desc"}},
		Type:     models.TypePhotography,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	for _, want := range []string{"page=2", "size=10", "sort=createdAt%2Cdesc", "pubType=PHOTOGRAPHY"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestPublicationListByTagEscapesThePath(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"content":[],"last":true,"first":true}`))
	}))

	pubs := NewPublicationService(client)
	if _, err := pubs.ListByTag(context.Background(), "café crema", ListOptions{}); err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/publication/tag/caf%C3%A9%20crema") {
		t.Fatalf("tag was not path-escaped: %q", gotPath)
	}
}

func TestPublicationListByTagSurfacesNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "unknown tag"})
	}))

	pubs := NewPublicationService(client)
	_, err := pubs.ListByTag(context.Background(), "neverused", ListOptions{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublicationCreateUploadsMultipartAndFetchesResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /publication", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var data models.CreatePublication
		if err := json.Unmarshal([]byte(r.FormValue("data")), &data); err != nil {
			t.Errorf("decode data part: %v", err)
		}
		if data.Description != "morning light" || data.Type != models.TypePhotography {
			t.Errorf("unexpected data part: %+v", data)
		}
		if files := r.MultipartForm.File["images"]; len(files) != 2 {
			t.Errorf("expected 2 image parts, got %d", len(files))
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42})
	})
	mux.HandleFunc("GET /publication/42", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "description": "morning light"})
	})
	client := newTestClient(t, mux)

	pubs := NewPublicationService(client)
	pub, err := pubs.Create(context.Background(), models.CreatePublication{
		Description: "morning light",
		Type:        models.TypePhotography,
	}, []FilePart{
		{Filename: "a.jpg", Content: strings.NewReader("jpeg-a")},
		{Filename: "b.jpg", Content: strings.NewReader("jpeg-b")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pub.ID != 42 || pub.Description != "morning light" {
		t.Fatalf("unexpected publication: %+v", pub)
	}
}

func TestPublicationCreateRejectsTooManyImages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent")
	}))

	images := make([]FilePart, models.MaxImagesPerPost+1)
	for i := range images {
		images[i] = FilePart{Filename: fmt.Sprintf("%d.jpg", i), Content: strings.NewReader("x")}
	}

	pubs := NewPublicationService(client)
	if _, err := pubs.Create(context.Background(), models.CreatePublication{}, images); err == nil {
		t.Fatal("expected an error for too many images")
	}
}

func TestCachingUserDirectory(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{"userId": 7, "username": "ana"})
	}))

	directory := NewCachingUserDirectory(NewUserService(client), time.Minute)

	for i := 0; i < 3; i++ {
		user, err := directory.ByUsername(context.Background(), "ana")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if user.UserID != 7 {
			t.Fatalf("unexpected user: %+v", user)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}

	directory.Invalidate("ana")
	if _, err := directory.ByUsername(context.Background(), "ana"); err != nil {
		t.Fatalf("lookup after invalidate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a refetch after invalidate, got %d calls", calls)
	}
}
