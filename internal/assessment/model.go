package assessment

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PredictionResult is the risk classification returned by the scoring service.
type PredictionResult struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"` // in [0,1]
	RiskLevel   string  `json:"riskLevel"`
}

type Review struct {
	Author string  `json:"author"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

// Provider is one doctor or clinic returned by a location search.
type Provider struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Experience  string  `json:"experience"`
	Phone       string  `json:"phone"`
	Website     string  `json:"website,omitempty"`
	TopReview   *Review `json:"top_review,omitempty"`
}

// Factor is one answered question, in catalog order.
type Factor struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type ReportInput struct {
	RiskLevel   string
	Probability float64
	Factors     []Factor
	Strategies  string
}

const (
	ReportFileName    = "Diabetes_Risk_Report.pdf"
	ReportContentType = "application/pdf"
)

// Report is the downloadable artifact built from a completed assessment.
type Report struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Pages       int    `json:"pages"`
	Data        []byte `json:"-"`
}

// Session is the aggregate root: one assessment state machine, one
// transcript and the latest doctor search results.
type Session struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Assessment State      `json:"assessment" db:"assessment"`
	Transcript []Message  `json:"transcript" db:"transcript"`
	Providers  []Provider `json:"providers" db:"providers"`
	Report     *Report    `json:"report,omitempty" db:"report"`

	// LastError is the error banner for the most recent failed action.
	LastError string    `json:"last_error,omitempty" db:"last_error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (s *Session) say(role Role, content string) {
	s.Transcript = append(s.Transcript, Message{Role: role, Content: content})
}
