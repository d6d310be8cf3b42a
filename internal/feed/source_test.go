package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lienzo/lienzo-go/internal/api"
	"github.com/lienzo/lienzo-go/internal/session"
)

func newSourceFixture(t *testing.T, handler http.Handler) (Source, *string) {
	t.Helper()

	var lastPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		if handler != nil {
			handler.ServeHTTP(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"content":[],"first":true,"last":true}`))
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, api.Options{Store: session.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return NewAPISource(api.NewPublicationService(client), api.NewUserService(client)), &lastPath
}

func TestSourceResolvesFilterPrecedence(t *testing.T) {
	source, lastPath := newSourceFixture(t, nil)
	ctx := context.Background()

	cases := []struct {
		name       string
		filter     Filter
		wantPrefix string
	}{
		{"tag wins over everything", Filter{Tag: "sunset", OnlySaved: true, OnlyFollowing: true, UserID: 7}, "/publication/tag/sunset"},
		{"saved wins over following", Filter{OnlySaved: true, OnlyFollowing: true, UserID: 7}, "/user/saved"},
		{"following wins over owner", Filter{OnlyFollowing: true, UserID: 7}, "/publication/following"},
		{"owner wins over global", Filter{UserID: 7}, "/publication/user/7"},
		{"global by default", Filter{}, "/publication"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := source.FetchPage(ctx, tc.filter, api.Pageable{Size: 10}); err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if !strings.HasPrefix(*lastPath, tc.wantPrefix) {
				t.Fatalf("filter %+v hit %q, want prefix %q", tc.filter, *lastPath, tc.wantPrefix)
			}
		})
	}
}

func TestSourceTreatsUnknownTagAsEmpty(t *testing.T) {
	source, _ := newSourceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unknown tag"}`, http.StatusNotFound)
	}))

	page, err := source.FetchPage(context.Background(), Filter{Tag: "neverused"}, api.Pageable{Size: 10})
	if err != nil {
		t.Fatalf("expected an unknown tag to read as empty, got %v", err)
	}
	if len(page.Content) != 0 || !page.Last {
		t.Fatalf("expected an empty final page, got %+v", page)
	}
}

func TestSourceNotFoundOutsideTagScopeIsAnError(t *testing.T) {
	source, _ := newSourceFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such user"}`, http.StatusNotFound)
	}))

	if _, err := source.FetchPage(context.Background(), Filter{UserID: 404}, api.Pageable{Size: 10}); err == nil {
		t.Fatal("a missing user listing must stay an error")
	}
}
