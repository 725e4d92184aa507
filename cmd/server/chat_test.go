package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"diabetes-assistant/internal/assessment"
)

type stubPredictor struct {
	result assessment.PredictionResult
	err    error
}

func (p stubPredictor) Predict(context.Context, map[string]float64) (assessment.PredictionResult, error) {
	return p.result, p.err
}

type stubNarrator struct{}

func (stubNarrator) Generate(_ context.Context, topic string, _ assessment.PromptContext) string {
	return "About " + topic
}

type stubDoctors struct{}

func (stubDoctors) Search(_ context.Context, location string) ([]assessment.Provider, error) {
	return []assessment.Provider{{Name: "Dr. Mehta", Address: location}}, nil
}

type stubReports struct{}

func (stubReports) Build(context.Context, assessment.ReportInput) (*assessment.Report, error) {
	return &assessment.Report{
		FileName:    assessment.ReportFileName,
		ContentType: assessment.ReportContentType,
		Pages:       1,
		Data:        []byte("%PDF-1.3 test"),
	}, nil
}

func newStubService(p stubPredictor) assessment.Service {
	return assessment.NewService(assessment.NewMemoryRepository(), p, stubNarrator{}, stubDoctors{}, stubReports{}, assessment.Options{})
}

func TestRunChat_CompletesAssessment(t *testing.T) {
	svc := newStubService(stubPredictor{result: assessment.PredictionResult{Probability: 0.25, RiskLevel: "Low"}})
	dir := t.TempDir()

	input := "/start\n" + strings.Repeat("1\n", len(assessment.DefaultCatalog)) + "/quit\n"
	var out bytes.Buffer
	if err := runChat(context.Background(), svc, strings.NewReader(input), &out, dir); err != nil {
		t.Fatalf("runChat: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		assessment.Greeting,
		assessment.DefaultCatalog[0].Prompt,
		"  1) 0",
		"your diabetes risk is: **Low** (Probability: 25.00%)",
		"Report saved to",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, assessment.ReportFileName))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if string(data) != "%PDF-1.3 test" {
		t.Errorf("unexpected report contents %q", data)
	}
}

func TestRunChat_RejectsOutOfRangeOption(t *testing.T) {
	svc := newStubService(stubPredictor{})
	var out bytes.Buffer
	input := "start assessment\n9\n/quit\n"
	if err := runChat(context.Background(), svc, strings.NewReader(input), &out, t.TempDir()); err != nil {
		t.Fatalf("runChat: %v", err)
	}
	if !strings.Contains(out.String(), "choose an option between 1 and 5") {
		t.Errorf("expected range error:\n%s", out.String())
	}
}

func TestRunChat_DoctorSearch(t *testing.T) {
	svc := newStubService(stubPredictor{})
	var out bytes.Buffer
	if err := runChat(context.Background(), svc, strings.NewReader("/doctors Pune\n"), &out, t.TempDir()); err != nil {
		t.Fatalf("runChat: %v", err)
	}
	if !strings.Contains(out.String(), "I found 1 diabetes specialists near Pune:") {
		t.Errorf("expected search results:\n%s", out.String())
	}
}

func TestRouter_HealthAndCORS(t *testing.T) {
	srv := httptest.NewServer(newRouter(newStubService(stubPredictor{}), []string{"*"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/questions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("questions status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
