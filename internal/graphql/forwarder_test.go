package graphql_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worldlore/lorekeeper/internal/graphql"
	appErr "github.com/worldlore/lorekeeper/internal/pkg/errors"
)

func newForwarder(t *testing.T, groups map[string][]string) *graphql.Forwarder {
	t.Helper()
	f, err := graphql.NewForwarder(groups, 5*time.Second, "")
	require.NoError(t, err)
	return f
}

func TestForwardFirstHealthyMirrorWins(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"source":"primary"}}`)
	}))
	defer primary.Close()
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("secondary mirror should not be contacted")
	}))
	defer secondary.Close()

	f := newForwarder(t, map[string][]string{"world": {primary.URL, secondary.URL}})
	result, err := f.Forward(context.Background(), "world", []byte(`{"query":"{planets{name}}"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.Status)
	require.Equal(t, primary.URL, result.Mirror)
	require.JSONEq(t, `{"data":{"source":"primary"}}`, string(result.Body))
}

func TestForwardFailsOverInPriorityOrder(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer healthy.Close()

	f := newForwarder(t, map[string][]string{"world": {broken.URL, healthy.URL}})
	result, err := f.Forward(context.Background(), "world", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, healthy.URL, result.Mirror)
}

func TestForwardAllMirrorsFailReportsLastError(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mirror drained", http.StatusServiceUnavailable)
	}))
	defer second.Close()

	f := newForwarder(t, map[string][]string{"world": {first.URL, second.URL}})
	_, err := f.Forward(context.Background(), "world", []byte(`{}`))
	ue, ok := appErr.AsUpstream(err)
	require.True(t, ok)
	require.Equal(t, http.StatusServiceUnavailable, ue.Status)
	require.Contains(t, ue.Note, "mirror drained")
}

func TestForwardUnknownGroup(t *testing.T) {
	f := newForwarder(t, map[string][]string{"world": {"http://127.0.0.1:1"}})
	_, err := f.Forward(context.Background(), "governance", []byte(`{}`))
	_, ok := appErr.AsValidation(err)
	require.True(t, ok)
}
