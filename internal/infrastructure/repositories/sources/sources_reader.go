package sources

import (
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// DefaultProxy is used when neither the settings nor GOPROXY name a source.
const DefaultProxy = "https://proxy.golang.org"

// EnvReader resolves sources from the settings, then GOPROXY, then DefaultProxy.
type EnvReader struct {
	getenv func(string) string
}

// NewEnvReader creates a reader over the process environment.
func NewEnvReader() *EnvReader {
	return &EnvReader{getenv: os.Getenv}
}

// NewEnvReaderWith creates a reader over a custom environment lookup.
func NewEnvReaderWith(getenv func(string) string) *EnvReader {
	return &EnvReader{getenv: getenv}
}

func (it *EnvReader) Read(folder string, settings entities.Settings) entities.PackageSources {
	if len(settings.User.Sources) > 0 {
		logger.Debugf("[sources] Using %d configured sources for %s", len(settings.User.Sources), folder)
		return entities.NewPackageSources(settings.User.Sources...)
	}

	if proxies := parseGoProxy(it.getenv("GOPROXY")); len(proxies) > 0 {
		return entities.NewPackageSources(proxies...)
	}
	return entities.NewPackageSources(DefaultProxy)
}

// parseGoProxy drops the "direct" and "off" keywords, which are not URLs.
func parseGoProxy(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '|'
	})

	var proxies []string
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" || field == "direct" || field == "off" {
			continue
		}
		proxies = append(proxies, field)
	}
	return proxies
}
