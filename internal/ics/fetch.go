package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appLog "chatcal/internal/log"
	"chatcal/internal/model"
)

// maxFeedBytes bounds a fetched calendar body.
const maxFeedBytes = 8 << 20

// Fetcher downloads a remote calendar feed and decodes it into events in
// the codec's reference zone.
type Fetcher struct {
	client *http.Client
	codec  Codec
}

// NewFetcher creates a Fetcher. A nil client gets a 15s timeout client.
func NewFetcher(client *http.Client, loc *time.Location) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, codec: Codec{Location: loc}}
}

// Fetch GETs feedURL and decodes the body. Records without a start are
// skipped by the codec; any non-200 status is an error.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]model.Event, error) {
	if feedURL == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	appLog.Info("ics fetch start", "url", redactURL(feedURL))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ics fetch %s: %s", redactURL(feedURL), resp.Status)
	}

	events, err := f.codec.Decode(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("ics fetch %s: %w", redactURL(feedURL), err)
	}

	appLog.Info("ics fetch success", "url", redactURL(feedURL), "event_count", len(events))
	return events, nil
}

// redactURL keeps only scheme and host so feed tokens never reach the log.
//
//	https://example.com/private.ics?token=abcd -> https://example.com/...(redacted)
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
