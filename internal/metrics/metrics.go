// Package metrics creates tally scopes reported through Prometheus.
package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
)

// NewScope creates a root scope prefixed with serviceName and the HTTP
// handler serving its metrics in the Prometheus exposition format.
func NewScope(serviceName string, interval time.Duration) (tally.Scope, http.Handler, io.Closer) {
	reporter := promreporter.NewReporter(promreporter.Options{})
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         serviceName,
		Tags:           map[string]string{},
		CachedReporter: reporter,
		Separator:      promreporter.DefaultSeparator,
	}, interval)
	return scope, reporter.HTTPHandler(), closer
}
