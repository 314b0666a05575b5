package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	syncSucceeded      atomic.Int64
	syncFailed         atomic.Int64
	syncRuns           atomic.Int64
	summaryCacheHits   atomic.Int64
	summaryCacheMiss   atomic.Int64
	alertsRaised       atomic.Int64
	ingestedMetricRows atomic.Int64
)

func ObserveSyncRun(succeeded, failed int) {
	syncRuns.Add(1)
	syncSucceeded.Add(int64(succeeded))
	syncFailed.Add(int64(failed))
}

func ObserveCacheHit()          { summaryCacheHits.Add(1) }
func ObserveCacheMiss()         { summaryCacheMiss.Add(1) }
func ObserveAlertRaised()       { alertsRaised.Add(1) }
func ObserveIngestedRows(n int) { ingestedMetricRows.Add(int64(n)) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP adpulse_sync_runs_total Number of pipeline passes executed.\n")
	fmt.Fprintf(w, "# TYPE adpulse_sync_runs_total counter\n")
	fmt.Fprintf(w, "adpulse_sync_runs_total %d\n", syncRuns.Load())

	fmt.Fprintf(w, "# HELP adpulse_sync_succeeded_total Number of integration syncs that succeeded.\n")
	fmt.Fprintf(w, "# TYPE adpulse_sync_succeeded_total counter\n")
	fmt.Fprintf(w, "adpulse_sync_succeeded_total %d\n", syncSucceeded.Load())

	fmt.Fprintf(w, "# HELP adpulse_sync_failed_total Number of integration syncs that failed.\n")
	fmt.Fprintf(w, "# TYPE adpulse_sync_failed_total counter\n")
	fmt.Fprintf(w, "adpulse_sync_failed_total %d\n", syncFailed.Load())

	fmt.Fprintf(w, "# HELP adpulse_summary_cache_hits_total KPI summary cache hits.\n")
	fmt.Fprintf(w, "# TYPE adpulse_summary_cache_hits_total counter\n")
	fmt.Fprintf(w, "adpulse_summary_cache_hits_total %d\n", summaryCacheHits.Load())

	fmt.Fprintf(w, "# HELP adpulse_summary_cache_misses_total KPI summary cache misses.\n")
	fmt.Fprintf(w, "# TYPE adpulse_summary_cache_misses_total counter\n")
	fmt.Fprintf(w, "adpulse_summary_cache_misses_total %d\n", summaryCacheMiss.Load())

	fmt.Fprintf(w, "# HELP adpulse_alerts_raised_total Alerts raised from sync events.\n")
	fmt.Fprintf(w, "# TYPE adpulse_alerts_raised_total counter\n")
	fmt.Fprintf(w, "adpulse_alerts_raised_total %d\n", alertsRaised.Load())

	fmt.Fprintf(w, "# HELP adpulse_metric_rows_ingested_total Metric rows written through the bulk ingest path.\n")
	fmt.Fprintf(w, "# TYPE adpulse_metric_rows_ingested_total counter\n")
	fmt.Fprintf(w, "adpulse_metric_rows_ingested_total %d\n", ingestedMetricRows.Load())
}
