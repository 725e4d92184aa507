package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"diabetes-assistant/internal/assessment"
)

// PredictionError reports a failed call to the risk scoring service.
// StatusCode and Body are set when the service answered with a non-2xx
// status.
type PredictionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *PredictionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("prediction request failed: %d %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("failed to get prediction: %v", e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// PredictionClient calls the risk scoring service's /predict endpoint.
type PredictionClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPredictionClient(baseURL string, timeout time.Duration) *PredictionClient {
	return &PredictionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

type predictionResponse struct {
	Prediction  *float64 `json:"prediction"`
	Probability *float64 `json:"probability"`
	RiskLevel   *string  `json:"riskLevel"`
}

// Predict submits the answers as a flat JSON object of numeric fields.
// There is no retry.
func (c *PredictionClient) Predict(ctx context.Context, answers map[string]float64) (assessment.PredictionResult, error) {
	body, err := json.Marshal(answers)
	if err != nil {
		return assessment.PredictionResult{}, &PredictionError{Err: fmt.Errorf("marshaling answers: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return assessment.PredictionResult{}, &PredictionError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return assessment.PredictionResult{}, &PredictionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return assessment.PredictionResult{}, &PredictionError{
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var out predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return assessment.PredictionResult{}, &PredictionError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if out.RiskLevel == nil || out.Probability == nil {
		return assessment.PredictionResult{}, &PredictionError{Err: fmt.Errorf("invalid response format from server")}
	}
	if p := *out.Probability; p < 0 || p > 1 {
		return assessment.PredictionResult{}, &PredictionError{Err: fmt.Errorf("probability %v out of range", p)}
	}

	result := assessment.PredictionResult{
		Probability: *out.Probability,
		RiskLevel:   *out.RiskLevel,
	}
	if out.Prediction != nil {
		result.Prediction = int(*out.Prediction)
	}
	return result, nil
}
