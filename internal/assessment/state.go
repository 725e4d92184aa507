package assessment

import (
	"errors"
	"fmt"
)

// Phase is the lifecycle position of the questionnaire.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleting Phase = "completing"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

var (
	ErrNotActive     = errors.New("no assessment question is awaiting an answer")
	ErrWrongQuestion = errors.New("answer does not match the current question")
	ErrUnknownOption = errors.New("unknown option for question")
	ErrAlreadyActive = errors.New("assessment already in progress")
)

// State is the questionnaire state machine. Index is only meaningful in
// PhaseInProgress, PhaseCompleting and PhaseFailed.
type State struct {
	Phase   Phase              `json:"phase"`
	Index   int                `json:"index"`
	Answers map[string]float64 `json:"answers"`
}

// Active reports whether an assessment is underway (the "active" flag of
// the chat UI).
func (s State) Active() bool {
	switch s.Phase {
	case PhaseInProgress, PhaseCompleting:
		return true
	case PhaseIdle, PhaseSucceeded, PhaseFailed:
		return false
	default:
		return false
	}
}

// Start resets the questionnaire to its first question. It is rejected
// while an assessment is underway.
func (s *State) Start() error {
	switch s.Phase {
	case PhaseInProgress, PhaseCompleting:
		return ErrAlreadyActive
	case "", PhaseIdle, PhaseSucceeded, PhaseFailed:
		s.Phase = PhaseInProgress
		s.Index = 0
		s.Answers = map[string]float64{}
		return nil
	default:
		return fmt.Errorf("unknown assessment phase %q", s.Phase)
	}
}

// Current returns the question awaiting an answer. After a failed
// completion this is the rolled-back question the user may answer again.
func (s State) Current(c Catalog) (Question, bool) {
	switch s.Phase {
	case PhaseInProgress, PhaseFailed:
		if s.Index >= 0 && s.Index < len(c) {
			return c[s.Index], true
		}
	}
	return Question{}, false
}

// Select records the option labelled label for the question key. It
// returns complete=true when the last question was answered and the state
// moved to PhaseCompleting.
func (s *State) Select(c Catalog, key, label string) (opt Option, complete bool, err error) {
	switch s.Phase {
	case PhaseInProgress, PhaseFailed:
	case "", PhaseIdle, PhaseCompleting, PhaseSucceeded:
		return Option{}, false, ErrNotActive
	default:
		return Option{}, false, fmt.Errorf("unknown assessment phase %q", s.Phase)
	}

	q, ok := s.Current(c)
	if !ok {
		return Option{}, false, ErrNotActive
	}
	if q.Key != key {
		return Option{}, false, fmt.Errorf("%w: got %q, want %q", ErrWrongQuestion, key, q.Key)
	}
	opt, ok = q.Option(label)
	if !ok {
		return Option{}, false, fmt.Errorf("%w %s: %q", ErrUnknownOption, key, label)
	}

	if s.Answers == nil {
		s.Answers = map[string]float64{}
	}
	s.Answers[key] = opt.Value

	if s.Index+1 < len(c) {
		s.Index++
		s.Phase = PhaseInProgress
		return opt, false, nil
	}
	s.Phase = PhaseCompleting
	return opt, true, nil
}

// Succeed closes a completing assessment.
func (s *State) Succeed() {
	if s.Phase != PhaseCompleting {
		return
	}
	s.Phase = PhaseSucceeded
	s.Index = 0
}

// Fail closes a completing assessment and rolls the index back to n-2
// (n = catalog size) so that question can be answered again.
func (s *State) Fail(n int) {
	if s.Phase != PhaseCompleting {
		return
	}
	s.Phase = PhaseFailed
	s.Index = max(n-2, 0)
}

func (s State) clone() State {
	out := s
	if s.Answers != nil {
		out.Answers = make(map[string]float64, len(s.Answers))
		for k, v := range s.Answers {
			out.Answers[k] = v
		}
	}
	return out
}
