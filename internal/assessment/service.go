package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PromptContext selects the template the narrative generator wraps a
// topic in.
type PromptContext string

const (
	ContextWelcome    PromptContext = "welcome"
	ContextPrediction PromptContext = "prediction"
	ContextEducation  PromptContext = "education"
	ContextGeneral    PromptContext = "general"
)

// Predictor scores a complete set of answers. Failures are fatal to the
// current assessment attempt.
type Predictor interface {
	Predict(ctx context.Context, answers map[string]float64) (PredictionResult, error)
}

// Narrator produces explanatory text. It never fails: on error it returns
// a readable apology instead.
type Narrator interface {
	Generate(ctx context.Context, topic string, pc PromptContext) string
}

// DoctorFinder looks up providers near a free-text location.
type DoctorFinder interface {
	Search(ctx context.Context, location string) ([]Provider, error)
}

// ReportBuilder lays out and renders the downloadable risk report.
type ReportBuilder interface {
	Build(ctx context.Context, in ReportInput) (*Report, error)
}

var (
	ErrSessionBusy    = errors.New("session is processing another request")
	ErrAwaitingOption = errors.New("please select an option for the current question")
	ErrEmptyMessage   = errors.New("message is empty")
)

type Service interface {
	Catalog() Catalog
	CreateSession(ctx context.Context) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	SendMessage(ctx context.Context, id uuid.UUID, text string) (*Session, error)
	StartAssessment(ctx context.Context, id uuid.UUID) (*Session, error)
	SelectOption(ctx context.Context, id uuid.UUID, key, label string) (*Session, error)
	SearchDoctors(ctx context.Context, id uuid.UUID, location string) (*Session, error)
}

type Options struct {
	// Catalog defaults to DefaultCatalog.
	Catalog Catalog
	// GenerateWelcome asks the narrator for the greeting instead of using
	// the fixed one.
	GenerateWelcome bool
	Logger          *slog.Logger
}

type service struct {
	repo      Repository
	predictor Predictor
	narrator  Narrator
	doctors   DoctorFinder
	reports   ReportBuilder
	catalog   Catalog
	welcome   bool
	logger    *slog.Logger

	mu   sync.Mutex
	busy map[uuid.UUID]bool
}

func NewService(repo Repository, predictor Predictor, narrator Narrator, doctors DoctorFinder, reports ReportBuilder, opts Options) Service {
	catalog := opts.Catalog
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:      repo,
		predictor: predictor,
		narrator:  narrator,
		doctors:   doctors,
		reports:   reports,
		catalog:   catalog,
		welcome:   opts.GenerateWelcome,
		logger:    logger,
		busy:      make(map[uuid.UUID]bool),
	}
}

func (s *service) Catalog() Catalog {
	return s.catalog
}

func (s *service) CreateSession(ctx context.Context) (*Session, error) {
	greeting := Greeting
	if s.welcome {
		greeting = s.narrator.Generate(ctx, "", ContextWelcome)
	}
	now := time.Now()
	sess := &Session{
		ID:         uuid.New(),
		Assessment: State{Phase: PhaseIdle},
		Transcript: []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sess.say(RoleAssistant, greeting)
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return sess, nil
}

func (s *service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}

// SendMessage routes free text typed by the user.
func (s *service) SendMessage(ctx context.Context, id uuid.UUID, text string) (*Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	return s.update(ctx, id, func(sess *Session) error {
		if sess.Assessment.Phase == PhaseInProgress {
			return ErrAwaitingOption
		}
		sess.say(RoleUser, text)

		intent, location := Classify(text)
		s.logger.Debug("routed message", "session_id", sess.ID, "intent", intent.String())
		switch intent {
		case IntentStartAssessment:
			s.start(sess)
		case IntentDoctorSearch:
			if location == "" {
				sess.say(RoleAssistant, msgNeedLocation)
				return nil
			}
			s.searchDoctors(ctx, sess, location)
		default:
			sess.Providers = nil
			sess.say(RoleAssistant, s.narrator.Generate(ctx, text, ContextEducation))
		}
		return nil
	})
}

func (s *service) StartAssessment(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if sess.Assessment.Active() {
			return ErrAlreadyActive
		}
		s.start(sess)
		return nil
	})
}

func (s *service) start(sess *Session) {
	if err := sess.Assessment.Start(); err != nil {
		sess.say(RoleAssistant, actionFailed(err))
		return
	}
	sess.Report = nil
	sess.Providers = nil
	sess.say(RoleAssistant, s.catalog[0].Prompt)
}

// SelectOption answers the current question with the option labelled
// label. Answering the last question runs the completion path.
func (s *service) SelectOption(ctx context.Context, id uuid.UUID, key, label string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		opt, complete, err := sess.Assessment.Select(s.catalog, key, label)
		if err != nil {
			return err
		}
		sess.say(RoleUser, opt.Label)
		sess.Providers = nil

		if !complete {
			q, _ := sess.Assessment.Current(s.catalog)
			sess.say(RoleAssistant, q.Prompt)
			return nil
		}
		s.complete(ctx, sess)
		return nil
	})
}

func (s *service) complete(ctx context.Context, sess *Session) {
	result, err := s.predictor.Predict(ctx, sess.Assessment.Answers)
	if err != nil {
		s.fail(sess, err)
		return
	}

	var explanation, strategies string
	var g errgroup.Group
	g.Go(func() error {
		explanation = s.narrator.Generate(ctx, predictionSummary(result), ContextPrediction)
		return nil
	})
	g.Go(func() error {
		strategies = s.narrator.Generate(ctx, preventionTopic, ContextEducation)
		return nil
	})
	_ = g.Wait()

	if strings.TrimSpace(strategies) == "" {
		strategies = noStrategiesMarker
	}
	report, err := s.reports.Build(ctx, ReportInput{
		RiskLevel:   result.RiskLevel,
		Probability: result.Probability,
		Factors:     s.catalog.Factors(sess.Assessment.Answers),
		Strategies:  strategies,
	})
	if err != nil {
		s.fail(sess, fmt.Errorf("building report: %w", err))
		return
	}

	sess.Report = report
	sess.say(RoleAssistant, assessmentResult(result, explanation))
	sess.say(RoleAssistant, msgReportReady)
	sess.Assessment.Succeed()
	s.logger.Info("assessment completed", "session_id", sess.ID, "risk_level", result.RiskLevel, "report_pages", report.Pages)
}

func (s *service) fail(sess *Session, err error) {
	s.logger.Warn("assessment failed", "session_id", sess.ID, "error", err)
	sess.Assessment.Fail(len(s.catalog))
	sess.LastError = fmt.Sprintf("Assessment failed: %v", err)
	sess.say(RoleAssistant, assessmentFailed(err))
}

// SearchDoctors runs a lookup for an explicitly entered location.
func (s *service) SearchDoctors(ctx context.Context, id uuid.UUID, location string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if sess.Assessment.Phase == PhaseInProgress {
			return ErrAwaitingOption
		}
		location = strings.TrimSpace(location)
		if location == "" {
			sess.say(RoleAssistant, msgEmptyLocation)
			return nil
		}
		sess.say(RoleUser, "find doctors in "+location)
		s.searchDoctors(ctx, sess, location)
		return nil
	})
}

func (s *service) searchDoctors(ctx context.Context, sess *Session, location string) {
	providers, err := s.doctors.Search(ctx, location)
	if err != nil {
		s.logger.Warn("doctor search failed", "session_id", sess.ID, "location", location, "error", err)
		sess.LastError = fmt.Sprintf("Error: %v", err)
		sess.say(RoleAssistant, actionFailed(err))
		return
	}

	sess.Providers = providers
	if len(providers) == 0 {
		sess.say(RoleAssistant, noProviders(location))
		return
	}
	sess.say(RoleAssistant, providersFound(len(providers), location))
	for _, p := range providers {
		sess.say(RoleAssistant, ProviderCard(p))
	}
}

// update serializes work on one session: a second request arriving while
// the first is still running fails with ErrSessionBusy.
func (s *service) update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error) {
	if !s.acquire(id) {
		return nil, ErrSessionBusy
	}
	defer s.release(id)

	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.LastError = ""
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return sess, nil
}

func (s *service) acquire(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		return false
	}
	s.busy[id] = true
	return true
}

func (s *service) release(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, id)
}
