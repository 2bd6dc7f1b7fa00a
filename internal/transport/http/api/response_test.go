package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusUnprocessableEntity, "upload_rejected", "upload rejected",
		map[string]any{"rows": []string{"Row 2: Invalid entry data"}}, "req-1")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Rows []string `json:"rows"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error.Code != "upload_rejected" || body.RequestID != "req-1" {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if len(body.Error.Details.Rows) != 1 || body.Error.Details.Rows[0] != "Row 2: Invalid entry data" {
		t.Fatalf("unexpected details %+v", body.Error.Details)
	}
}

func TestFailOmitsDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusNotFound, "not_found", "missing", "")

	var raw struct {
		Error map[string]any `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw.Error["details"]; ok {
		t.Fatalf("details should be omitted: %v", raw.Error)
	}
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "application/pdf", "slip.pdf", []byte("%PDF"))

	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="slip.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Body.String() != "%PDF" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
