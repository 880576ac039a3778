// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "cqlclient":
//
//	collector := vm.New()
//	client, _ := cqlclient.NewQueryClient(connector,
//	    cqlclient.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_statement_total{kind="insert"}
//   - myapp_statement_duration_seconds{kind="select"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer:
//
//	collector.WritePrometheus(os.Stdout)
//
// # Metrics Provided
//
// Connection:
//   - {prefix}_connect_total - Counter of connect attempts
//   - {prefix}_connect_errors_total - Counter of failed connects
//   - {prefix}_connected_hosts - Gauge of hosts discovered at connect time
//
// Statements:
//   - {prefix}_statement_total{kind} - Counter of executed statements
//   - {prefix}_statement_errors_total{kind} - Counter of failed statements
//   - {prefix}_statement_duration_seconds{kind} - Histogram of statement latencies
//   - {prefix}_inflight_queries - Gauge of asynchronous queries not yet completed
//
// Journal:
//   - {prefix}_journal_recorded_total - Counter of journaled statements
//   - {prefix}_journal_dropped_total - Counter of rejected journal writes
//
// # Performance Notes
//
// This implementation pre-creates all metrics at initialization time
// using the NewXXX pattern (instead of GetOrCreateXXX) for optimal
// performance in hot paths, as recommended by the VictoriaMetrics documentation.
//
// The metrics are registered with a dedicated Set that is registered
// globally, allowing standard Prometheus scraping.
package vm
