// Package chat holds the conversational flow over the engine as an
// immutable State replaced wholesale by Transition.
package chat

import (
	"lepto-risk-workers/internal/models"
)

type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseAwaitingInput Phase = "awaiting_input"
	PhaseExtracting    Phase = "extracting"
	PhaseNoEntities    Phase = "no_entities"
	PhaseClassified    Phase = "classified"
	PhaseBuilt         Phase = "built"
	PhaseReported      Phase = "reported"
	PhaseFailed        Phase = "failed"
)

type EventKind string

const (
	EventOpened     EventKind = "opened"
	EventSubmitted  EventKind = "submitted"
	EventNoEntities EventKind = "no_entities"
	EventClassified EventKind = "classified"
	EventBuilt      EventKind = "built"
	EventReported   EventKind = "reported"
	EventFailed     EventKind = "failed"
	EventResumed    EventKind = "resumed"
)

// Event drives one transition. Message, when set, is appended to the
// transcript if the transition is accepted.
type Event struct {
	Kind     EventKind
	Message  *models.ChatMessage
	Entities models.ExtractedEntities
	Mode     models.QueryMode
	Result   *models.QueryResult
	Err      string
}

// State is one snapshot of the chat. Current is the last successfully
// reported result and survives failures and unrecognised messages.
type State struct {
	Phase      Phase                    `json:"phase"`
	Transcript []models.ChatMessage     `json:"transcript"`
	Entities   models.ExtractedEntities `json:"entities"`
	Mode       models.QueryMode         `json:"mode,omitempty"`
	Pending    int                      `json:"pending"`
	Building   *models.QueryResult      `json:"-"`
	Current    *models.QueryResult      `json:"current,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Initial is the state before the chat is opened.
func Initial() State {
	return State{Phase: PhaseIdle, Transcript: []models.ChatMessage{}}
}

var allowed = map[EventKind][]Phase{
	EventOpened:     {PhaseIdle},
	EventSubmitted:  {PhaseAwaitingInput, PhaseExtracting},
	EventNoEntities: {PhaseExtracting},
	EventClassified: {PhaseExtracting},
	EventBuilt:      {PhaseClassified},
	EventReported:   {PhaseBuilt},
	EventFailed:     {PhaseExtracting, PhaseClassified, PhaseBuilt},
	EventResumed:    {PhaseNoEntities, PhaseReported, PhaseFailed},
}

// Accepts reports whether ev is valid in phase p.
func Accepts(p Phase, kind EventKind) bool {
	for _, from := range allowed[kind] {
		if from == p {
			return true
		}
	}
	return false
}

// Transition returns the state after ev. Events that are not valid in the
// current phase return an unchanged copy. The input state is never modified.
func Transition(s State, ev Event) State {
	next := s.clone()
	if !Accepts(s.Phase, ev.Kind) {
		return next
	}

	switch ev.Kind {
	case EventOpened:
		next.Phase = PhaseAwaitingInput
	case EventSubmitted:
		next.Phase = PhaseExtracting
		next.Pending++
		next.Error = ""
	case EventNoEntities:
		next.Phase = PhaseNoEntities
		next.Entities = ev.Entities
	case EventClassified:
		next.Phase = PhaseClassified
		next.Entities = ev.Entities
		next.Mode = ev.Mode
	case EventBuilt:
		next.Phase = PhaseBuilt
		next.Building = ev.Result
	case EventReported:
		next.Phase = PhaseReported
		next.Current = next.Building
		next.Building = nil
	case EventFailed:
		next.Phase = PhaseFailed
		next.Building = nil
		next.Error = ev.Err
	case EventResumed:
		if next.Pending > 0 {
			next.Pending--
		}
		next.Phase = PhaseAwaitingInput
		if next.Pending > 0 {
			next.Phase = PhaseExtracting
		}
	}

	if ev.Message != nil {
		next.Transcript = append(next.Transcript, *ev.Message)
	}
	return next
}

func (s State) clone() State {
	out := s
	out.Transcript = append(make([]models.ChatMessage, 0, len(s.Transcript)), s.Transcript...)
	return out
}
