package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"diabetes-assistant/internal/assessment"
)

const DefaultSearchRadius = 5000 // meters

// notAvailable is the backend's placeholder for missing contact fields.
const notAvailable = "Not available"

// DoctorSearchError reports a failed provider lookup. It never affects the
// assessment state.
type DoctorSearchError struct {
	Location   string
	StatusCode int
	Body       string
	Err        error
}

func (e *DoctorSearchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("doctor search failed: %d - %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("failed to search for doctors: %v", e.Err)
}

func (e *DoctorSearchError) Unwrap() error {
	return e.Err
}

// DoctorClient queries the provider search service.
type DoctorClient struct {
	baseURL    string
	radius     int
	httpClient *http.Client
}

func NewDoctorClient(baseURL string, radius int, timeout time.Duration) *DoctorClient {
	if radius <= 0 {
		radius = DefaultSearchRadius
	}
	return &DoctorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		radius:     radius,
		httpClient: newHTTPClient(timeout),
	}
}

func (c *DoctorClient) Radius() int {
	return c.radius
}

type doctorReview struct {
	Author string  `json:"author"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
	Time   string  `json:"time"`
}

type doctorJSON struct {
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	Rating       float64        `json:"rating"`
	TotalReviews int            `json:"total_reviews"`
	Experience   string         `json:"experience"`
	Phone        string         `json:"phone"`
	Website      string         `json:"website"`
	Reviews      []doctorReview `json:"reviews"`
}

type doctorSearchResponse struct {
	Doctors  json.RawMessage `json:"doctors"`
	Location string          `json:"location"`
	Radius   int             `json:"radius"`
}

// Search returns providers in the order the service sent them. An empty
// list is a valid result.
func (c *DoctorClient) Search(ctx context.Context, location string) ([]assessment.Provider, error) {
	q := url.Values{}
	q.Set("location", location)
	q.Set("radius", strconv.Itoa(c.radius))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/doctors/search?"+q.Encode(), nil)
	if err != nil {
		return nil, &DoctorSearchError{Location: location, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &DoctorSearchError{Location: location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DoctorSearchError{
			Location:   location,
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var out doctorSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &DoctorSearchError{Location: location, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if raw := bytes.TrimSpace(out.Doctors); len(raw) == 0 || raw[0] != '[' {
		return nil, &DoctorSearchError{Location: location, Err: fmt.Errorf("invalid doctor search response format from server")}
	}

	var doctors []doctorJSON
	if err := json.Unmarshal(out.Doctors, &doctors); err != nil {
		return nil, &DoctorSearchError{Location: location, Err: fmt.Errorf("decoding doctors: %w", err)}
	}

	providers := make([]assessment.Provider, 0, len(doctors))
	for _, d := range doctors {
		providers = append(providers, d.provider())
	}
	return providers, nil
}

func (d doctorJSON) provider() assessment.Provider {
	p := assessment.Provider{
		Name:        d.Name,
		Address:     d.Address,
		Rating:      d.Rating,
		ReviewCount: d.TotalReviews,
		Experience:  d.Experience,
		Phone:       d.Phone,
	}
	if d.Website != notAvailable {
		p.Website = d.Website
	}
	if len(d.Reviews) > 0 {
		r := d.Reviews[0]
		p.TopReview = &assessment.Review{Author: r.Author, Rating: r.Rating, Text: r.Text}
	}
	return p
}
