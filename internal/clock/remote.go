package clock

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultURL returns the timeapi.io endpoint serving the current time for
// the given zone, keeping the remote wall-clock string and the ledger's
// canonical timezone in agreement.
func DefaultURL(zone string) string {
	return "https://timeapi.io/api/Time/current/zone?timeZone=" + url.QueryEscape(zone)
}

// Remote asks an authoritative time service and falls back to the local
// system clock on any failure. Fallback readings are tagged SourceLocal,
// never surfaced as errors.
type Remote struct {
	Client *http.Client
	URL    string
	Loc    *time.Location
}

// NewRemote creates a remote clock for the given endpoint and canonical
// location.
func NewRemote(url string, loc *time.Location) *Remote {
	return &Remote{
		Client: &http.Client{Timeout: 10 * time.Second},
		URL:    url,
		Loc:    loc,
	}
}

// timeResponse is the payload returned by timeapi.io. The dateTime field is
// a wall-clock value in the requested zone, without offset.
type timeResponse struct {
	DateTime string `json:"dateTime"`
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func (r *Remote) Now(ctx context.Context) Reading {
	t, err := r.fetch(ctx)
	if err != nil {
		log.Println("Remote time unavailable, using local clock:", err)
		return Reading{Time: time.Now().In(r.Loc), Source: SourceLocal}
	}
	return Reading{Time: t, Source: SourceRemote}
}

func (r *Remote) fetch(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("build time request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetch time: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("time service returned status %d", resp.StatusCode)
	}

	var payload timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, fmt.Errorf("decode time response: %w", err)
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, payload.DateTime, r.Loc); err == nil {
			return t.In(r.Loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized dateTime %q", payload.DateTime)
}

var _ Clock = (*Remote)(nil)
