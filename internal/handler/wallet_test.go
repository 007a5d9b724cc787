package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// Query validation runs before any repository access, so these cases need
// no database.
func TestWalletHistoryRejectsBadQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"unknown filter", "filter=REFUND", "INVALID_FILTER"},
		{"lowercase filter accepted elsewhere", "filter=charge&page=-1", "INVALID_PAGE"},
		{"negative page", "page=-1", "INVALID_PAGE"},
		{"zero size", "size=0", "INVALID_PAGE"},
		{"non-numeric page", "page=abc", "INVALID_PAGE"},
	}

	h := NewWalletHandler(nil)
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/users/wallet?"+tt.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.History(c); err != nil {
				t.Fatalf("History returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body struct {
				Status  int    `json:"status"`
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != http.StatusBadRequest || body.Code != tt.wantCode {
				t.Errorf("body = %+v, want status 400 code %s", body, tt.wantCode)
			}
		})
	}
}
