package graphql

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/worldlore/lorekeeper/internal/pkg/errors"
)

// Result carries the answering mirror's response verbatim.
type Result struct {
	Status int
	Body   []byte
	Mirror string
}

// attempt records the tagged outcome of one mirror try.
type attempt struct {
	mirror string
	err    error
}

// Forwarder relays GraphQL requests to named groups of interchangeable
// mirrors, trying each mirror in its configured priority order until
// one answers with a 2xx status. It fails only when every mirror in
// the group has failed, reporting the last error encountered.
type Forwarder struct {
	groups map[string][]string
	client *http.Client
}

func NewForwarder(groups map[string][]string, timeout time.Duration, proxy string) (*Forwarder, error) {
	transport := http.DefaultTransport
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, err
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	return &Forwarder{
		groups: groups,
		client: &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

func (f *Forwarder) Forward(ctx context.Context, group string, body []byte) (*Result, error) {
	mirrors, ok := f.groups[group]
	if !ok || len(mirrors) == 0 {
		return nil, appErr.NewValidationError("unknown graphql group: %s", group)
	}

	var attempts []attempt
	for i, mirror := range mirrors {
		res, err := f.post(ctx, mirror, body)
		if err == nil {
			return res, nil
		}
		attempts = append(attempts, attempt{mirror: mirror, err: err})
		logutil.GetLogger(ctx).Warn("graphql mirror failed",
			zap.String("group", group), zap.Int("index", i),
			zap.String("mirror", mirror), zap.Error(err))
	}

	last := attempts[len(attempts)-1]
	if ue, ok := appErr.AsUpstream(last.err); ok {
		return nil, ue
	}
	return nil, appErr.NewUpstreamError(http.StatusBadGateway, last.err.Error())
}

func (f *Forwarder) post(ctx context.Context, mirror string, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mirror, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErr.NewUpstreamError(resp.StatusCode, string(respBody))
	}
	return &Result{Status: resp.StatusCode, Body: respBody, Mirror: mirror}, nil
}

// Groups lists the configured group names in stable order, for the
// health endpoint.
func (f *Forwarder) Groups() []string {
	names := make([]string, 0, len(f.groups))
	for name := range f.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
