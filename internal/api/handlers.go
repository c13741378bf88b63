// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/telebackup/internal/backup"
	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/metrics"
	"github.com/tomtom215/telebackup/internal/validation"
)

// Handler holds the dependencies of the API endpoints.
type Handler struct {
	agent   *backup.Agent
	version string
}

// NewHandler creates the API handler set.
func NewHandler(agent *backup.Agent, version string) *Handler {
	return &Handler{agent: agent, version: version}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w).Success(map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// TriggerBackup handles POST /api/v1/backup. It runs a full backup
// cycle synchronously and returns the cycle summary.
func (h *Handler) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	result, err := h.agent.Backup(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Backup cycle failed")
		rw.InternalError("backup cycle failed: " + err.Error())
		return
	}
	rw.Success(result)
}

// TriggerRestore handles POST /api/v1/restore. It applies every chunk
// currently present in the archive directory and returns the summary.
func (h *Handler) TriggerRestore(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	result, err := h.agent.Restore(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Restore cycle failed")
		rw.InternalError("restore cycle failed: " + err.Error())
		return
	}
	rw.Success(result)
}

// QuotaStateResponse is the payload of GET /api/v1/quota.
type QuotaStateResponse struct {
	Active      bool  `json:"active"`
	BackupBytes int64 `json:"backup_bytes,omitempty"`
	QuotaBytes  int64 `json:"quota_bytes,omitempty"`
	ResetAt     int64 `json:"reset_at,omitempty"`
}

// QuotaState handles GET /api/v1/quota.
func (h *Handler) QuotaState(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	state, err := h.agent.Tracker().Current()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load quota state")
		rw.InternalError("failed to load quota state")
		return
	}
	if state == nil {
		rw.Success(QuotaStateResponse{Active: false})
		return
	}
	rw.Success(QuotaStateResponse{
		Active:      true,
		BackupBytes: state.BackupBytes,
		QuotaBytes:  state.QuotaBytes,
		ResetAt:     state.ResetAt,
	})
}

// ClearQuota handles DELETE /api/v1/quota.
func (h *Handler) ClearQuota(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	if err := h.agent.Tracker().Clear(); err != nil {
		logging.Error().Err(err).Msg("Failed to clear quota state")
		rw.InternalError("failed to clear quota state")
		return
	}
	rw.NoContent()
}

// QuotaExceededRequest is the body of POST /api/v1/quota/exceeded.
type QuotaExceededRequest struct {
	BackupDataBytes int64 `json:"backup_data_bytes" validate:"required,gt=0"`
	QuotaBytes      int64 `json:"quota_bytes" validate:"required,gt=0"`
}

// QuotaExceeded handles POST /api/v1/quota/exceeded. The remote storage
// provider calls this when a backup overran its quota; the recorded
// state throttles the next cycles.
func (h *Handler) QuotaExceeded(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	var req QuotaExceededRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body: " + err.Error())
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if err := h.agent.OnQuotaExceeded(req.BackupDataBytes, req.QuotaBytes); err != nil {
		logging.Error().Err(err).Msg("Failed to record quota notification")
		rw.InternalError("failed to record quota notification")
		return
	}
	metrics.QuotaNotifications.Inc()

	logging.Info().
		Int64("backup_data_bytes", req.BackupDataBytes).
		Int64("quota_bytes", req.QuotaBytes).
		Msg("Quota exceeded notification recorded")
	rw.NoContent()
}
