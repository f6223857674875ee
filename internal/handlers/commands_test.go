package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"garage_gateway/internal/models"
	"garage_gateway/internal/service"
)

func TestDoorEndpoints_Unauthorized(t *testing.T) {
	gw := &mockGateway{}
	s := &service.Service{
		Authorization: &mockAuth{},
		Gateway:       gw,
	}
	r := newTestRouter(s)

	for _, path := range []string{"/api/v1/door/open", "/api/v1/door/close"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status got %d, want 401", path, w.Code)
		}
	}
	if gw.sendCalls != 0 {
		t.Fatalf("gateway called %d times without credentials", gw.sendCalls)
	}
}

func TestDoorEndpoints_SendCommand(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		wantValue int
		wantCmd   string
	}{
		{name: "open", path: "/api/v1/door/open", wantValue: models.DoorOpen, wantCmd: "open"},
		{name: "close", path: "/api/v1/door/close", wantValue: models.DoorClosed, wantCmd: "close"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &mockGateway{}
			s := &service.Service{
				Authorization: &mockAuth{authUser: &models.User{Username: "lello", Role: models.RoleUser}},
				Gateway:       gw,
			}
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			req.SetBasicAuth("lello", "pw")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200; body=%s", w.Code, w.Body.String())
			}
			if gw.sendCalls != 1 || gw.lastValue != tc.wantValue {
				t.Fatalf("SendCommand calls=%d value=%d, want 1 call with value %d", gw.sendCalls, gw.lastValue, tc.wantValue)
			}

			var resp struct {
				Status string `json:"status"`
				Cmd    string `json:"cmd"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Status != "sent" || resp.Cmd != tc.wantCmd {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestDoorEndpoints_PublishFailure(t *testing.T) {
	gw := &mockGateway{sendErr: service.ErrUnprocessable}
	s := &service.Service{
		Authorization: &mockAuth{authUser: &models.User{Username: "lello"}},
		Gateway:       gw,
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/door/open", nil)
	req.SetBasicAuth("lello", "pw")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422; body=%s", w.Code, w.Body.String())
	}
}

func TestIngestGPS(t *testing.T) {
	lat, lon := 55.75, 37.61

	cases := []struct {
		name     string
		body     any
		ingest   error
		wantCode int
	}{
		{name: "numeric value", body: map[string]any{"value": 1}, wantCode: http.StatusOK},
		{name: "with coordinates", body: map[string]any{"value": 0, "lat": lat, "lon": lon}, wantCode: http.StatusOK},
		{
			name:     "unusable value",
			body:     map[string]any{"value": "north"},
			ingest:   service.ErrUnprocessable,
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &mockGateway{ingestErr: tc.ingest}
			s := &service.Service{
				Authorization: &mockAuth{authUser: &models.User{Username: "lello"}},
				Gateway:       gw,
			}
			r := newTestRouter(s)

			raw, _ := json.Marshal(tc.body)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/gps", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			req.SetBasicAuth("lello", "pw")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status: got %d, want %d; body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if gw.ingestCalls != 1 {
				t.Fatalf("IngestPosition calls: got %d, want 1", gw.ingestCalls)
			}
			if tc.name == "with coordinates" {
				if gw.lastLat == nil || *gw.lastLat != lat || gw.lastLon == nil || *gw.lastLon != lon {
					t.Fatalf("coordinates not forwarded: lat=%v lon=%v", gw.lastLat, gw.lastLon)
				}
			}
		})
	}
}
