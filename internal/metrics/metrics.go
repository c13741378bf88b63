// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

// Package metrics exposes Prometheus instrumentation for the backup
// engine: cycle durations, chunk production and withholding, handed-off
// bytes, restore outcomes, datastore query latency, and the API surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Backup cycle metrics

	BackupCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_cycle_duration_seconds",
			Help:    "Duration of backup cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	BackupCycleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_cycle_errors_total",
			Help: "Total number of failed backup cycles",
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful backup cycle",
		},
	)

	ChunksProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_chunks_produced_total",
			Help: "Total number of non-empty chunks produced",
		},
		[]string{"kind"},
	)

	ChunksWithheld = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_chunks_withheld_total",
			Help: "Total number of chunks withheld under quota pressure",
		},
		[]string{"kind"},
	)

	EntriesEncoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_entries_encoded_total",
			Help: "Total number of records encoded into chunks",
		},
		[]string{"kind"},
	)

	BytesHandedOff = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_bytes_handed_off_total",
			Help: "Total compressed bytes handed to the transport",
		},
	)

	// Restore cycle metrics

	RestoreCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "restore_cycle_duration_seconds",
			Help:    "Duration of restore cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	RestoreCycleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restore_cycle_errors_total",
			Help: "Total number of failed restore cycles",
		},
	)

	RestoreFilesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restore_files_skipped_total",
			Help: "Total number of unreadable chunk files left in place",
		},
	)

	RecordsRestored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restore_records_total",
			Help: "Total number of records inserted by restore",
		},
		[]string{"kind"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restore_records_skipped_total",
			Help: "Total number of duplicate records skipped by restore",
		},
		[]string{"kind"},
	)

	MessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restore_messages_dropped_total",
			Help: "Total number of multimedia messages dropped during restore",
		},
	)

	// Quota metrics

	QuotaWithholdBudget = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quota_withhold_budget_bytes",
			Help: "Withholding budget armed for the current backup cycle",
		},
	)

	QuotaNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quota_exceeded_notifications_total",
			Help: "Total number of quota-exceeded notifications recorded",
		},
	)

	// Datastore metrics

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of datastore queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of datastore query errors",
		},
		[]string{"operation", "table"},
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordBackupCycle records the outcome of one backup cycle.
func RecordBackupCycle(duration time.Duration, err error) {
	BackupCycleDuration.Observe(duration.Seconds())
	if err != nil {
		BackupCycleErrors.Inc()
		return
	}
	BackupLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordRestoreCycle records the outcome of one restore cycle.
func RecordRestoreCycle(duration time.Duration, err error) {
	RestoreCycleDuration.Observe(duration.Seconds())
	if err != nil {
		RestoreCycleErrors.Inc()
	}
}

// RecordChunkProduced records a finished non-empty chunk.
func RecordChunkProduced(kind string, entries int) {
	ChunksProduced.WithLabelValues(kind).Inc()
	EntriesEncoded.WithLabelValues(kind).Add(float64(entries))
}

// RecordChunkWithheld records a chunk withheld under quota pressure.
func RecordChunkWithheld(kind string) {
	ChunksWithheld.WithLabelValues(kind).Inc()
}

// RecordBytesHandedOff records compressed bytes given to the transport.
func RecordBytesHandedOff(n int64) {
	BytesHandedOff.Add(float64(n))
}

// RecordRestoreFileSkipped records an unreadable chunk file.
func RecordRestoreFileSkipped() {
	RestoreFilesSkipped.Inc()
}

// RecordRecordsRestored records rows inserted by restore.
func RecordRecordsRestored(kind string, n int) {
	RecordsRestored.WithLabelValues(kind).Add(float64(n))
}

// RecordRecordsSkipped records duplicate rows skipped by restore.
func RecordRecordsSkipped(kind string, n int) {
	RecordsSkipped.WithLabelValues(kind).Add(float64(n))
}

// RecordMessagesDropped records multimedia messages dropped by restore.
func RecordMessagesDropped(n int) {
	MessagesDropped.Add(float64(n))
}

// RecordStoreQuery records a datastore query metric.
func RecordStoreQuery(operation, table string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
