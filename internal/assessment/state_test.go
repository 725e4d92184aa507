package assessment

import (
	"errors"
	"testing"
)

func answerAll(t *testing.T, s *State, c Catalog) {
	t.Helper()
	for i, q := range c {
		_, complete, err := s.Select(c, q.Key, q.Options[0].Label)
		if err != nil {
			t.Fatalf("Select %s: %v", q.Key, err)
		}
		if want := i == len(c)-1; complete != want {
			t.Fatalf("Select %s: complete = %v, want %v", q.Key, complete, want)
		}
	}
}

func TestState_StartAndAnswer(t *testing.T) {
	var s State
	if s.Active() {
		t.Fatal("zero state should be inactive")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Active() || s.Phase != PhaseInProgress || s.Index != 0 {
		t.Fatalf("unexpected state after Start: %+v", s)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("second Start = %v, want ErrAlreadyActive", err)
	}

	opt, complete, err := s.Select(DefaultCatalog, "Pregnancies", "3-5")
	if err != nil || complete {
		t.Fatalf("Select = %v, %v", complete, err)
	}
	if opt.Value != 4 || s.Answers["Pregnancies"] != 4 || s.Index != 1 {
		t.Errorf("unexpected state: opt=%+v state=%+v", opt, s)
	}
}

func TestState_SelectRejections(t *testing.T) {
	var s State
	if _, _, err := s.Select(DefaultCatalog, "Pregnancies", "0"); !errors.Is(err, ErrNotActive) {
		t.Errorf("Select while idle = %v, want ErrNotActive", err)
	}

	_ = s.Start()
	if _, _, err := s.Select(DefaultCatalog, "Glucose", "<100"); !errors.Is(err, ErrWrongQuestion) {
		t.Errorf("Select wrong key = %v, want ErrWrongQuestion", err)
	}
	if _, _, err := s.Select(DefaultCatalog, "Pregnancies", "twelve"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Select unknown label = %v, want ErrUnknownOption", err)
	}
	if s.Index != 0 || len(s.Answers) != 0 {
		t.Errorf("rejected answers changed state: %+v", s)
	}
}

func TestState_CompleteAndSucceed(t *testing.T) {
	var s State
	_ = s.Start()
	answerAll(t, &s, DefaultCatalog)

	if s.Phase != PhaseCompleting || !s.Active() {
		t.Fatalf("expected completing, got %+v", s)
	}
	for _, q := range DefaultCatalog {
		if _, ok := s.Answers[q.Key]; !ok {
			t.Errorf("missing answer for %s", q.Key)
		}
	}
	if len(s.Answers) != len(DefaultCatalog) {
		t.Errorf("got %d answers, want %d", len(s.Answers), len(DefaultCatalog))
	}

	s.Succeed()
	if s.Phase != PhaseSucceeded || s.Active() || s.Index != 0 {
		t.Errorf("unexpected state after Succeed: %+v", s)
	}
	if _, ok := s.Current(DefaultCatalog); ok {
		t.Error("no question should be open after success")
	}
}

func TestState_FailRollsBackAndRetries(t *testing.T) {
	var s State
	_ = s.Start()
	answerAll(t, &s, DefaultCatalog)

	n := len(DefaultCatalog)
	s.Fail(n)
	if s.Phase != PhaseFailed || s.Active() || s.Index != n-2 {
		t.Fatalf("unexpected state after Fail: %+v", s)
	}

	q, ok := s.Current(DefaultCatalog)
	if !ok || q.Key != DefaultCatalog[n-2].Key {
		t.Fatalf("Current after Fail = %v, %v", q.Key, ok)
	}

	if _, complete, err := s.Select(DefaultCatalog, q.Key, "Yes"); err != nil || complete {
		t.Fatalf("retry Select = %v, %v", complete, err)
	}
	if s.Phase != PhaseInProgress || s.Index != n-1 || s.Answers[q.Key] != 0.8 {
		t.Errorf("unexpected state after retry: %+v", s)
	}
}

func TestState_FailClampsIndex(t *testing.T) {
	short := DefaultCatalog[:1]
	var s State
	_ = s.Start()
	answerAll(t, &s, short)
	s.Fail(len(short))
	if s.Index != 0 {
		t.Errorf("Index = %d, want 0", s.Index)
	}
}

func TestState_StartAfterTerminal(t *testing.T) {
	for _, phase := range []Phase{PhaseSucceeded, PhaseFailed} {
		s := State{Phase: phase, Index: 6, Answers: map[string]float64{"Age": 60}}
		if err := s.Start(); err != nil {
			t.Fatalf("Start from %s: %v", phase, err)
		}
		if s.Phase != PhaseInProgress || s.Index != 0 || len(s.Answers) != 0 {
			t.Errorf("Start from %s left %+v", phase, s)
		}
	}
}
