package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lepto-risk-workers/internal/models"
)

func msg(text string) *models.ChatMessage {
	return &models.ChatMessage{ID: text, Sender: models.SenderUser, Text: text}
}

func TestTransition_HappyPath(t *testing.T) {
	result := &models.QueryResult{Report: "report"}

	s := Initial()
	steps := []struct {
		ev   Event
		want Phase
	}{
		{Event{Kind: EventOpened}, PhaseAwaitingInput},
		{Event{Kind: EventSubmitted, Message: msg("Germany 2015")}, PhaseExtracting},
		{Event{Kind: EventClassified, Mode: models.QueryModeSingleYear}, PhaseClassified},
		{Event{Kind: EventBuilt, Result: result}, PhaseBuilt},
		{Event{Kind: EventReported, Message: msg("report")}, PhaseReported},
		{Event{Kind: EventResumed}, PhaseAwaitingInput},
	}
	for _, step := range steps {
		s = Transition(s, step.ev)
		require.Equal(t, step.want, s.Phase, "after %s", step.ev.Kind)
	}

	assert.Same(t, result, s.Current)
	assert.Nil(t, s.Building)
	assert.Equal(t, 0, s.Pending)
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, "Germany 2015", s.Transcript[0].Text)
}

func TestTransition_NoEntitiesKeepsCurrent(t *testing.T) {
	previous := &models.QueryResult{Report: "previous"}
	s := State{Phase: PhaseAwaitingInput, Current: previous}

	s = Transition(s, Event{Kind: EventSubmitted, Message: msg("hello")})
	s = Transition(s, Event{Kind: EventNoEntities, Message: msg("prompt")})
	assert.Equal(t, PhaseNoEntities, s.Phase)
	s = Transition(s, Event{Kind: EventResumed})

	assert.Equal(t, PhaseAwaitingInput, s.Phase)
	assert.Same(t, previous, s.Current)
	assert.Len(t, s.Transcript, 2)
}

func TestTransition_FailureKeepsCurrent(t *testing.T) {
	previous := &models.QueryResult{Report: "previous"}
	s := State{Phase: PhaseAwaitingInput, Current: previous}

	s = Transition(s, Event{Kind: EventSubmitted})
	s = Transition(s, Event{Kind: EventFailed, Err: "TRANSPORT_FAILURE"})
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, "TRANSPORT_FAILURE", s.Error)
	s = Transition(s, Event{Kind: EventResumed})

	assert.Same(t, previous, s.Current)
	s = Transition(s, Event{Kind: EventSubmitted})
	assert.Empty(t, s.Error)
}

func TestTransition_InvalidEventIsIgnored(t *testing.T) {
	s := Transition(Initial(), Event{Kind: EventReported, Message: msg("x")})
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Empty(t, s.Transcript)

	s = Transition(State{Phase: PhaseAwaitingInput}, Event{Kind: EventBuilt})
	assert.Equal(t, PhaseAwaitingInput, s.Phase)
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	base := State{Phase: PhaseAwaitingInput, Transcript: make([]models.ChatMessage, 1, 8)}
	base.Transcript[0] = *msg("first")

	a := Transition(base, Event{Kind: EventSubmitted, Message: msg("a")})
	b := Transition(base, Event{Kind: EventSubmitted, Message: msg("b")})

	assert.Len(t, base.Transcript, 1)
	assert.Equal(t, PhaseAwaitingInput, base.Phase)
	assert.Equal(t, "a", a.Transcript[1].Text)
	assert.Equal(t, "b", b.Transcript[1].Text)
}

func TestTransition_OverlappingSubmissions(t *testing.T) {
	s := State{Phase: PhaseAwaitingInput}
	s = Transition(s, Event{Kind: EventSubmitted})
	s = Transition(s, Event{Kind: EventSubmitted})
	assert.Equal(t, 2, s.Pending)

	s = Transition(s, Event{Kind: EventNoEntities})
	s = Transition(s, Event{Kind: EventResumed})
	assert.Equal(t, PhaseExtracting, s.Phase)
	assert.Equal(t, 1, s.Pending)

	s = Transition(s, Event{Kind: EventFailed})
	s = Transition(s, Event{Kind: EventResumed})
	assert.Equal(t, PhaseAwaitingInput, s.Phase)
	assert.Equal(t, 0, s.Pending)
}
