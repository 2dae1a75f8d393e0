package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	appLog "jobcal/internal/log"
	"jobcal/internal/model"
)

// cacheEntry holds HTTP cache metadata for the remote endpoint.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Remote reads records from the hosted backend's REST endpoint. It honours
// ETag / Last-Modified and keeps the last good body on disk so a network
// failure degrades to slightly stale data rather than an empty calendar.
type Remote struct {
	client   *http.Client
	url      string
	apiKey   string
	cacheDir string
}

// NewRemote creates a Remote for endpoint. cacheDir may be empty to
// disable the disk cache.
func NewRemote(endpoint, apiKey, cacheDir string) *Remote {
	return &Remote{
		client:   &http.Client{Timeout: 15 * time.Second},
		url:      endpoint,
		apiKey:   apiKey,
		cacheDir: cacheDir,
	}
}

func (r *Remote) Close() error { return nil }

func (r *Remote) AddApplication(context.Context, model.ApplicationRecord) (string, error) {
	return "", ErrReadOnly
}

func (r *Remote) AddTimelineEntry(context.Context, string, model.TimelineEntry) error {
	return ErrReadOnly
}

// Applications fetches and decodes the record list.
func (r *Remote) Applications(ctx context.Context) ([]model.ApplicationRecord, error) {
	body, fromCache, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	var records []model.ApplicationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	appLog.Debug("remote records loaded", "url", redactURL(r.url), "count", len(records), "from_cache", fromCache)
	return records, nil
}

func (r *Remote) fetch(ctx context.Context) ([]byte, bool, error) {
	cachePath := r.cachePath()
	var meta cacheEntry
	var cachedBody []byte
	if cachePath != "" {
		if err := os.MkdirAll(cachePath, 0o700); err != nil {
			return nil, false, err
		}
		meta, _ = loadCacheMeta(cachePath)
		cachedBody, _ = os.ReadFile(filepath.Join(cachePath, "body.json"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	if len(cachedBody) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("remote fetch network error, using cached body", err, "url", redactURL(r.url))
			return cachedBody, true, nil
		}
		return nil, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, err
		}
		// Portals and proxies answer 200 with HTML; only a record list may
		// replace the cached body.
		if err := json.Unmarshal(body, new([]model.ApplicationRecord)); err != nil {
			if len(cachedBody) > 0 {
				appLog.Error("remote body is not a record list, using cached body", err, "url", redactURL(r.url))
				return cachedBody, true, nil
			}
			return nil, false, fmt.Errorf("decode records: %w", err)
		}
		if cachePath != "" {
			newMeta := cacheEntry{
				URL:          r.url,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
			}
			if err := saveCache(cachePath, newMeta, body); err != nil {
				appLog.Error("remote cache save failed", err, "url", redactURL(r.url))
			}
		}
		return body, false, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, false, errors.New("received 304 Not Modified but no cached body available")
		}
		return cachedBody, true, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("remote fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(r.url), "status", resp.StatusCode)
			return cachedBody, true, nil
		}
		return nil, false, fmt.Errorf("remote fetch: %s", resp.Status)
	}
}

func (r *Remote) cachePath() string {
	if r.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.url))
	return filepath.Join(r.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host; query strings on hosted backends
// carry filters and sometimes keys.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
