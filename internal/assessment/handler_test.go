package assessment

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T, f *fixture) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, NewHandler(f.svc))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func decodeView(t *testing.T, data []byte) SessionView {
	t.Helper()
	var v SessionView
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decoding session view: %v\n%s", err, data)
	}
	return v
}

func TestHandler_AssessmentFlow(t *testing.T) {
	f := newFixture()
	srv := newTestServer(t, f)

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, data)
	}
	view := decodeView(t, data)
	base := srv.URL + "/api/sessions/" + view.ID

	resp, data = doJSON(t, http.MethodPost, base+"/assessment", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d: %s", resp.StatusCode, data)
	}
	view = decodeView(t, data)
	if !view.Active || view.CurrentQuestion == nil || view.CurrentQuestion.Key != "Pregnancies" {
		t.Fatalf("unexpected view after start: %+v", view)
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/messages", MessageRequest{Text: "hello"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("free text during questions status = %d, want 409", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, base+"/assessment/answers", AnswerRequest{Key: "Glucose", Label: "<100"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("wrong question status = %d, want 409", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, base+"/assessment/answers", AnswerRequest{Key: "Pregnancies", Label: "lots"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown option status = %d, want 400", resp.StatusCode)
	}

	for _, q := range DefaultCatalog {
		resp, data = doJSON(t, http.MethodPost, base+"/assessment/answers", AnswerRequest{Key: q.Key, Label: q.Options[0].Label})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("answer %s status = %d: %s", q.Key, resp.StatusCode, data)
		}
	}
	view = decodeView(t, data)
	if view.Phase != PhaseSucceeded || view.ReportURL == "" || view.Report == nil {
		t.Fatalf("unexpected view after completion: %+v", view)
	}

	resp, data = doJSON(t, http.MethodGet, srv.URL+view.ReportURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="Diabetes_Risk_Report.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if string(data) != "%PDF" {
		t.Errorf("report body = %q", data)
	}
}

func TestHandler_Errors(t *testing.T) {
	f := newFixture()
	srv := newTestServer(t, f)
	s := f.session(t)
	base := srv.URL + "/api/sessions/" + s.ID.String()

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		want   int
	}{
		{name: "bad id", method: http.MethodGet, url: srv.URL + "/api/sessions/not-a-uuid", want: http.StatusBadRequest},
		{name: "unknown session", method: http.MethodGet, url: srv.URL + "/api/sessions/9b2f6f38-8a2e-4f0e-9d5e-6c1c0f4f2b11", want: http.StatusNotFound},
		{name: "bad body", method: http.MethodPost, url: base + "/messages", body: "{", want: http.StatusBadRequest},
		{name: "empty message", method: http.MethodPost, url: base + "/messages", body: `{"text":"  "}`, want: http.StatusBadRequest},
		{name: "no report yet", method: http.MethodGet, url: base + "/report", want: http.StatusNotFound},
		{name: "answer while idle", method: http.MethodPost, url: base + "/assessment/answers", body: `{"key":"Pregnancies","label":"0"}`, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, tt.url, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestHandler_QuestionsAndDoctors(t *testing.T) {
	f := newFixture()
	f.doctors.providers = []Provider{{Name: "Dr. Rao"}}
	srv := newTestServer(t, f)

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/questions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("questions status = %d", resp.StatusCode)
	}
	var catalog []Question
	if err := json.Unmarshal(data, &catalog); err != nil || len(catalog) != len(DefaultCatalog) {
		t.Fatalf("catalog = %d questions, err %v", len(catalog), err)
	}

	s := f.session(t)
	resp, data = doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+s.ID.String()+"/doctors", DoctorSearchRequest{Location: "Pune"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("doctors status = %d: %s", resp.StatusCode, data)
	}
	view := decodeView(t, data)
	if len(view.Providers) != 1 || view.Providers[0].Name != "Dr. Rao" {
		t.Errorf("providers = %+v", view.Providers)
	}
}
