package python

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
)

const (
	// DefaultIndexURL is the PyPI JSON API root.
	DefaultIndexURL = "https://pypi.org/pypi"

	indexTimeout  = 20 * time.Second
	indexRetryMax = 3
)

var errProjectNotFound = errors.New("project not found on index")

// Release is one published version of a project.
type Release struct {
	Version   string
	Published time.Time
}

type releaseFile struct {
	UploadTime time.Time `json:"upload_time_iso_8601"`
	Yanked     bool      `json:"yanked"`
}

type projectPayload struct {
	Releases map[string][]releaseFile `json:"releases"`
}

// IndexClient reads project metadata from a PyPI-compatible JSON API.
type IndexClient struct {
	baseURL string
	client  *retryablehttp.Client
}

// NewIndexClient creates a client for the index rooted at baseURL.
func NewIndexClient(baseURL string) *IndexClient {
	client := retryablehttp.NewClient()
	client.RetryMax = indexRetryMax
	client.HTTPClient.Timeout = indexTimeout
	client.Logger = leveledLogger{}
	return &IndexClient{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// Releases returns every version of project that still has at least one
// non-yanked file. Published is the earliest upload time of the version.
func (it *IndexClient) Releases(ctx context.Context, project string) ([]Release, error) {
	endpoint := it.baseURL + "/" + url.PathEscape(project) + "/json"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := it.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errProjectNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var payload projectPayload
	if err = json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}

	releases := make([]Release, 0, len(payload.Releases))
	for version, files := range payload.Releases {
		release, ok := toRelease(version, files)
		if ok {
			releases = append(releases, release)
		}
	}
	return releases, nil
}

func toRelease(version string, files []releaseFile) (Release, bool) {
	release := Release{Version: version}
	available := false
	for _, file := range files {
		if file.Yanked {
			continue
		}
		available = true
		if release.Published.IsZero() || file.UploadTime.Before(release.Published) {
			release.Published = file.UploadTime
		}
	}
	return release, available
}

// leveledLogger routes retryablehttp's logging through logrus at debug level.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) { logger.Debugf("[python] %s %v", msg, kv) }
func (leveledLogger) Info(msg string, kv ...interface{})  { logger.Debugf("[python] %s %v", msg, kv) }
func (leveledLogger) Debug(msg string, kv ...interface{}) { logger.Debugf("[python] %s %v", msg, kv) }
func (leveledLogger) Warn(msg string, kv ...interface{})  { logger.Debugf("[python] %s %v", msg, kv) }
