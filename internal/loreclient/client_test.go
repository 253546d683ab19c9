package loreclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worldlore/lorekeeper/internal/loreclient"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestCanonicalDocumentRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "# Recovered\n\nBack online.")
	}))
	defer srv.Close()

	client := loreclient.New(srv.URL, time.Second, loreclient.WithSleep(noSleep))
	document := client.CanonicalDocument(context.Background())
	require.Equal(t, "# Recovered\n\nBack online.", document)
	require.EqualValues(t, 2, calls.Load())
}

func TestCanonicalDocumentFallsBackToLastGood(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "# Golden Copy\n\nStable text.")
	}))
	defer srv.Close()

	client := loreclient.New(srv.URL, time.Second, loreclient.WithSleep(noSleep))
	require.Equal(t, "# Golden Copy\n\nStable text.", client.CanonicalDocument(context.Background()))

	healthy.Store(false)
	require.Equal(t, "# Golden Copy\n\nStable text.", client.CanonicalDocument(context.Background()))
}

func TestCanonicalDocumentPlaceholderWhenNeverFetched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := loreclient.New(srv.URL, time.Second, loreclient.WithSleep(noSleep))
	document := client.CanonicalDocument(context.Background())
	require.Contains(t, document, "Archive Temporarily Offline")
}

func TestOpenProposalsPlaceholderSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := loreclient.New(srv.URL, time.Second, loreclient.WithSleep(noSleep))
	page := client.OpenProposals(context.Background(), 20, 0)
	require.NotEmpty(t, page.Items)
	require.Equal(t, "Archive temporarily offline", page.Items[0].Title)
}

func TestRawContentPropagatesLastError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := loreclient.New(srv.URL, time.Second,
		loreclient.WithSleep(noSleep), loreclient.WithAttempts(4))
	_, err := client.RawContent(context.Background(), "https://api.github.com/repos/a/b/contents/x.md")
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 502")
	require.EqualValues(t, 4, calls.Load())
}
