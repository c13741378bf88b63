// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package validation

import (
	"strings"
	"testing"
)

type quotaRequest struct {
	BackupDataBytes int64 `validate:"required,gt=0"`
	QuotaBytes      int64 `validate:"required,gt=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := quotaRequest{BackupDataBytes: 1000, QuotaBytes: 800}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct = %v, want nil", err)
	}
}

func TestValidateStructSingleError(t *testing.T) {
	req := quotaRequest{BackupDataBytes: 1000}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct = nil, want error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "QuotaBytes") {
		t.Errorf("Message = %q, want it to name QuotaBytes", apiErr.Message)
	}
	if apiErr.Details["field"] != "QuotaBytes" {
		t.Errorf("Details.field = %v", apiErr.Details["field"])
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := quotaRequest{}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct = nil, want error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("Errors() has %d entries, want 2", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("Details.fields = %v, want 2 entries", apiErr.Details["fields"])
	}
}

func TestTranslateGtMessage(t *testing.T) {
	req := quotaRequest{BackupDataBytes: -5, QuotaBytes: 800}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct = nil, want error")
	}
	if !strings.Contains(err.Error(), "must be greater than 0") {
		t.Errorf("Error = %q, want gt translation", err.Error())
	}
}
