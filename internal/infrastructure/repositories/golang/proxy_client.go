package golang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/module"
)

const (
	proxyTimeout  = 20 * time.Second
	proxyRetryMax = 3
)

// errModuleNotFound is returned when a proxy answers 404 or 410 for a module.
var errModuleNotFound = errors.New("module not found on proxy")

// versionInfo is the payload of the proxy's "@v/<version>.info" endpoint.
type versionInfo struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// ProxyClient queries module proxies speaking the GOPROXY protocol.
type ProxyClient struct {
	client *retryablehttp.Client
}

// NewProxyClient creates a client that retries transient proxy failures.
func NewProxyClient() *ProxyClient {
	client := retryablehttp.NewClient()
	client.RetryMax = proxyRetryMax
	client.HTTPClient.Timeout = proxyTimeout
	client.Logger = leveledLogger{}
	return &ProxyClient{client: client}
}

// ListVersions returns the tagged versions of modulePath known to source, in proxy order.
func (it *ProxyClient) ListVersions(ctx context.Context, source, modulePath string) ([]string, error) {
	escaped, err := module.EscapePath(modulePath)
	if err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", modulePath, err)
	}

	body, err := it.get(ctx, strings.TrimSuffix(source, "/")+"/"+escaped+"/@v/list")
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, line := range strings.Split(string(body), "\n") {
		if v := strings.TrimSpace(line); v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// Info returns the publication metadata of one module version.
func (it *ProxyClient) Info(ctx context.Context, source, modulePath, version string) (versionInfo, error) {
	escapedPath, err := module.EscapePath(modulePath)
	if err != nil {
		return versionInfo{}, fmt.Errorf("invalid module path %q: %w", modulePath, err)
	}
	escapedVersion, err := module.EscapeVersion(version)
	if err != nil {
		return versionInfo{}, fmt.Errorf("invalid version %q: %w", version, err)
	}

	body, err := it.get(ctx, strings.TrimSuffix(source, "/")+"/"+escapedPath+"/@v/"+escapedVersion+".info")
	if err != nil {
		return versionInfo{}, err
	}

	var info versionInfo
	if unmarshalErr := json.Unmarshal(body, &info); unmarshalErr != nil {
		return versionInfo{}, fmt.Errorf("failed to decode version info: %w", unmarshalErr)
	}
	return info, nil
}

func (it *ProxyClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := it.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, errModuleNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// leveledLogger routes retryablehttp's logging through logrus at debug level.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) { logger.Debugf("[golang] %s %v", msg, kv) }
func (leveledLogger) Info(msg string, kv ...interface{})  { logger.Debugf("[golang] %s %v", msg, kv) }
func (leveledLogger) Debug(msg string, kv ...interface{}) { logger.Debugf("[golang] %s %v", msg, kv) }
func (leveledLogger) Warn(msg string, kv ...interface{})  { logger.Debugf("[golang] %s %v", msg, kv) }
