package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPredictionClient_Predict(t *testing.T) {
	var got map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prediction":1,"probability":0.72,"riskLevel":"High"}`))
	}))
	defer srv.Close()

	c := NewPredictionClient(srv.URL+"/", time.Second)
	answers := map[string]float64{"Glucose": 160, "BMI": 27.5}
	res, err := c.Predict(context.Background(), answers)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.RiskLevel != "High" || res.Probability != 0.72 || res.Prediction != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if got["Glucose"] != 160 || got["BMI"] != 27.5 {
		t.Errorf("unexpected request body: %v", got)
	}
}

func TestPredictionClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: 500},
		{name: "missing risk level", status: http.StatusOK, body: `{"probability":0.5}`},
		{name: "missing probability", status: http.StatusOK, body: `{"riskLevel":"Low"}`},
		{name: "probability out of range", status: http.StatusOK, body: `{"probability":1.5,"riskLevel":"High"}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewPredictionClient(srv.URL, time.Second).Predict(context.Background(), map[string]float64{})
			var perr *PredictionError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *PredictionError, got %v", err)
			}
			if perr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", perr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestPredictionClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPredictionClient(url, time.Second).Predict(context.Background(), map[string]float64{})
	var perr *PredictionError
	if !errors.As(err, &perr) || perr.StatusCode != 0 {
		t.Fatalf("expected transport PredictionError, got %v", err)
	}
}
