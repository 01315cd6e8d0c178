package config

import "time"

// defaults lists every configuration key. Keys without a meaningful default
// still appear here with their zero value so environment overrides reach them.
var defaults = map[string]any{
	"app.name": "invoice-service",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":                 "localhost",
	"database.port":                 5432,
	"database.user":                 "postgres",
	"database.password":             "",
	"database.dbname":               "invoices",
	"database.sslmode":              "disable",
	"database.max_open_conns":       25,
	"database.max_idle_conns":       5,
	"database.conn_max_lifetime":    60,
	"database.conn_max_idle_time":   30,
	"database.slow_query_threshold": 200 * time.Millisecond,
	"database.log_query_params":     false,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"event.publish_mode":        PublishModeOutbox,
	"event.processor_enabled":   true,
	"event.batch_size":          100,
	"event.poll_interval":       2 * time.Second,
	"event.max_retries":         5,
	"event.cleanup_enabled":     true,
	"event.cleanup_retention":   168 * time.Hour,
	"event.idempotency_backend": BackendMemory,
	"event.idempotency_ttl":     24 * time.Hour,

	"http.read_timeout":     15 * time.Second,
	"http.write_timeout":    15 * time.Second,
	"http.idle_timeout":     60 * time.Second,
	"http.max_header_bytes": 1 << 20,
	"http.max_body_size":    int64(1 << 20),
	"http.conflict_retries": 3,
	// no cross-origin requests unless origins are configured
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "",
	"telemetry.insecure":           true,
	"telemetry.db_trace_enabled":   false,
	"telemetry.db_log_full_sql":    false,
	"telemetry.metrics_enabled":    false,
	"telemetry.metrics_interval":   60 * time.Second,
	"telemetry.logs_enabled":       false,

	"invoice.number_prefix":    "INV",
	"invoice.sequence_backend": BackendDatabase,
	"invoice.default_currency": "USD",
}
