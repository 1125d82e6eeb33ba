// Package telemetry optionally submits one batch of custom-metric series
// summarizing a completed run to DataDog. Absent credentials it is
// skipped silently: a missing DD_API_KEY/DD_APP_KEY pair means "feature
// disabled," never a fatal error.
package telemetry

import (
	"context"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"go.uber.org/zap"

	"github.com/your-ko/link-validator/pkg/checker"
	"github.com/your-ko/link-validator/pkg/stats"
)

// Reporter submits run summaries to DataDog. A zero-value Reporter (no
// client configured) makes Report a no-op.
type Reporter struct {
	client *datadog.APIClient
	apiKey string
	appKey string
	logger *zap.Logger
}

// New builds a Reporter from the DD_API_KEY/DD_APP_KEY environment pair.
// Either being empty returns a Reporter whose Report is a no-op — the
// caller never needs to branch on whether telemetry is configured.
func New(apiKey, appKey string, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == "" || appKey == "" {
		return &Reporter{logger: logger}
	}
	return &Reporter{
		client: datadog.NewAPIClient(datadog.NewConfiguration()),
		apiKey: apiKey,
		appKey: appKey,
		logger: logger,
	}
}

// Report submits one metric series each for the ok, failed, error,
// timeout, and excluded counts plus the run's duration; redirected
// responses are not reported. A submission failure is logged and otherwise ignored;
// telemetry never gates the process exit code.
func (r *Reporter) Report(ctx context.Context, s *stats.Stats, duration time.Duration) {
	if r.client == nil {
		return
	}

	now := float64(timeNowUnix())
	series := []datadogV1.Series{
		r.series("link_validator.run.ok", now, float64(s.Count(checker.Ok))),
		r.series("link_validator.run.failed", now, float64(s.Count(checker.Failed))),
		r.series("link_validator.run.errored", now, float64(s.Count(checker.Error))),
		r.series("link_validator.run.timeout", now, float64(s.Count(checker.Timeout))),
		r.series("link_validator.run.excluded", now, float64(s.Count(checker.Excluded))),
		r.series("link_validator.run.duration_seconds", now, duration.Seconds()),
	}

	ctx = context.WithValue(datadog.NewDefaultContext(ctx), datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: r.apiKey},
		"appKeyAuth": {Key: r.appKey},
	})

	metricsAPI := datadogV1.NewMetricsApi(r.client)
	_, _, err := metricsAPI.SubmitMetrics(ctx, datadogV1.MetricsPayload{Series: series})
	if err != nil {
		r.logger.Warn("telemetry: failed to submit run metrics", zap.Error(err))
	}
}

func (r *Reporter) series(metric string, ts, value float64) datadogV1.Series {
	gauge := "gauge"
	return datadogV1.Series{
		Metric: metric,
		Points: [][]*float64{{floatPtr(ts), floatPtr(value)}},
		Type:   &gauge,
	}
}

func floatPtr(f float64) *float64 { return &f }

// timeNowUnix is a seam so tests can stamp a deterministic submission time
// instead of reaching for time.Now directly inside Report.
var timeNowUnix = func() int64 { return time.Now().Unix() }
