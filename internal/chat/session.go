package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/models"
	buildreport "lepto-risk-workers/internal/workers/infrastructure/build-report"
)

// Runner is the part of the engine a session needs.
type Runner interface {
	Vocabulary() models.Vocabulary
	Extract(message string) models.ExtractedEntities
	Classify(entities models.ExtractedEntities) (models.QueryMode, error)
	Resolve(ctx context.Context, countries []string, year *int) ([]models.RiskRecord, error)
	Render(mode models.QueryMode, countries []string, year *int, subset []models.RiskRecord) *models.QueryResult
}

// Session is one chat conversation. Each Submit fetches without holding the
// lock; whichever fetch resolves last decides the displayed result.
type Session struct {
	mu     sync.Mutex
	state  State
	runner Runner
	logger logger.Logger
	now    func() time.Time
}

func NewSession(runner Runner, log logger.Logger) *Session {
	s := &Session{
		state:  Initial(),
		runner: runner,
		logger: log.WithFields(map[string]interface{}{"component": "chat"}),
		now:    time.Now,
	}
	s.apply(Event{Kind: EventOpened, Message: s.message(models.SenderBot, buildreport.WelcomeText)})
	return s
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Transcript returns a copy of the append-only transcript.
func (s *Session) Transcript() []models.ChatMessage {
	return s.State().Transcript
}

// Submit runs one user message through the flow and returns the bot reply
// and the state at its outcome: PhaseReported, PhaseNoEntities or
// PhaseFailed. The session itself has already resumed awaiting input.
// Errors never leave the session; they become a reply and the previous
// result stays current.
func (s *Session) Submit(ctx context.Context, text string) (models.ChatMessage, State) {
	s.apply(Event{Kind: EventSubmitted, Message: s.message(models.SenderUser, text)})

	entities := s.runner.Extract(text)
	mode, err := s.runner.Classify(entities)
	if err != nil {
		reply := s.message(models.SenderBot, buildreport.NoEntityPrompt(s.runner.Vocabulary()))
		st := s.settle(Event{Kind: EventNoEntities, Entities: entities, Message: reply})
		return *reply, st
	}

	subset, err := s.runner.Resolve(ctx, entities.Countries, entities.Year)
	if err != nil {
		return s.fail(err, buildreport.TransportErrText)
	}
	if len(subset) == 0 {
		noData := apperrors.NewNoDataForSelectionError(entities.Countries, entities.Year)
		return s.fail(noData, buildreport.NoDataText(entities.Countries, entities.Year))
	}

	result := s.runner.Render(mode, entities.Countries, entities.Year, subset)
	result.Message = text
	reply := s.message(models.SenderBot, result.Report)
	st := s.settle(
		Event{Kind: EventClassified, Entities: entities, Mode: mode},
		Event{Kind: EventBuilt, Result: result},
		Event{Kind: EventReported, Message: reply},
	)
	return *reply, st
}

func (s *Session) fail(err error, text string) (models.ChatMessage, State) {
	s.logger.Warn("chat query failed", map[string]interface{}{"error": err.Error()})
	reply := s.message(models.SenderBot, text)
	st := s.settle(Event{Kind: EventFailed, Err: err.Error(), Message: reply})
	return *reply, st
}

// apply commits a run of events atomically so runs from concurrent
// submissions never interleave.
func (s *Session) apply(events ...Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.state = Transition(s.state, ev)
	}
	return s.state.clone()
}

// settle applies the outcome events and resumes in the same critical
// section, returning the snapshot taken before resuming.
func (s *Session) settle(events ...Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.state = Transition(s.state, ev)
	}
	outcome := s.state.clone()
	s.state = Transition(s.state, Event{Kind: EventResumed})
	return outcome
}

func (s *Session) message(sender models.ChatSender, text string) *models.ChatMessage {
	return &models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: sender,
		Text:   text,
		At:     s.now().UTC(),
	}
}
