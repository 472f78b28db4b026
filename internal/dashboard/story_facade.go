package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/progress"
	"github.com/ramonehamilton/fine-dashboard/internal/session"
)

// StoryFacade drives the character chart panel of one viewer session: the
// character selector and the filler-word progress bar.
type StoryFacade struct {
	services *Services
}

// NewStoryFacade creates a new StoryFacade.
func NewStoryFacade(services *Services) *StoryFacade {
	return &StoryFacade{services: services}
}

// SessionSnapshot is the panel state of a session.
type SessionSnapshot struct {
	ID        string          `json:"id"`
	Character string          `json:"character"`
	Update    progress.Update `json:"update"`
}

// ClickRequest is a click on a dialogue point of the character chart. An
// empty Character means the session's selected character.
type ClickRequest struct {
	Character string `json:"character,omitempty"`
	Dialogue  string `json:"dialogue"`
}

// StartSession creates a viewer session with zeroed progress.
func (f *StoryFacade) StartSession(ctx context.Context) (*SessionSnapshot, error) {
	s, err := f.services.Sessions.Create()
	if err != nil {
		return nil, &AppError{Message: fmt.Sprintf("Failed to start session: %v", err), Err: err}
	}
	f.services.Metrics.SessionsCreated.Add(1)

	view := s.View()
	f.services.Dispatcher.Dispatch(events.NewTypedEvent(ctx, events.SessionStarted, s.ID, events.SessionEvent{
		SessionID: s.ID,
	}))

	return &SessionSnapshot{
		ID:        s.ID,
		Character: view.Character,
		Update:    f.services.Accumulator.Snapshot(view.Progress),
	}, nil
}

// Snapshot returns the current panel state without changing it.
func (f *StoryFacade) Snapshot(id string) (*SessionSnapshot, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}
	view := s.View()
	return &SessionSnapshot{
		ID:        s.ID,
		Character: view.Character,
		Update:    f.render(view),
	}, nil
}

// ChangeCharacter applies a character selector change.
func (f *StoryFacade) ChangeCharacter(ctx context.Context, id, character string) (*SessionSnapshot, error) {
	if !f.services.validCharacter(character) {
		return nil, &AppError{
			Message: fmt.Sprintf("Unknown character %q", character),
			Err:     ErrUnknownCharacter,
		}
	}

	s, err := f.session(id)
	if err != nil {
		return nil, err
	}

	acc := f.services.Accumulator
	update := session.Apply(s, func(v session.View) (session.View, progress.Update) {
		next, u := acc.OnFilterChange(v.Progress, character)
		return session.View{Character: character, Progress: next}, u
	})
	f.services.Metrics.FilterChanges.Add(1)

	f.publish(ctx, s.ID, character, "filter", update)
	return &SessionSnapshot{ID: s.ID, Character: character, Update: update}, nil
}

// Click applies a click on a dialogue point.
func (f *StoryFacade) Click(ctx context.Context, id string, req ClickRequest) (*SessionSnapshot, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	acc := f.services.Accumulator

	var (
		character string
		stepped   bool
	)
	update := session.Apply(s, func(v session.View) (session.View, progress.Update) {
		character = req.Character
		if character == "" {
			character = v.Character
		}
		next, u := acc.OnClick(v.Progress, character, req.Dialogue)
		stepped = next.Progress > v.Progress.Progress
		v.Progress = next
		return v, u
	})

	m := f.services.Metrics
	m.ClickLatency.Since(start)
	m.Clicks.Add(1)
	if stepped {
		m.ProgressSteps.Add(1)
	}

	f.publish(ctx, s.ID, character, "click", update)
	return &SessionSnapshot{ID: s.ID, Character: s.View().Character, Update: update}, nil
}

// EndSession discards a session.
func (f *StoryFacade) EndSession(ctx context.Context, id string) error {
	if !f.services.Sessions.Delete(id) {
		return &AppError{Message: "Session not found", Err: fmt.Errorf("%w: %s", ErrSessionNotFound, id)}
	}
	f.services.Dispatcher.Dispatch(events.NewTypedEvent(ctx, events.SessionEnded, id, events.SessionEvent{
		SessionID: id,
		Reason:    "closed",
	}))
	return nil
}

func (f *StoryFacade) session(id string) (*session.Session, error) {
	s, err := f.services.Sessions.Get(id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, &AppError{Message: "Session not found", Err: fmt.Errorf("%w: %s", ErrSessionNotFound, id)}
	}
	if err != nil {
		return nil, &AppError{Message: "Failed to load session", Err: err}
	}
	return s, nil
}

// render shows the switch instruction while a non-tracked character is selected.
func (f *StoryFacade) render(v session.View) progress.Update {
	acc := f.services.Accumulator
	if v.Character != acc.TrackedCharacter() {
		_, u := acc.OnFilterChange(v.Progress, v.Character)
		return u
	}
	return acc.Snapshot(v.Progress)
}

func (f *StoryFacade) publish(ctx context.Context, id, character, trigger string, update progress.Update) {
	f.services.Dispatcher.Dispatch(events.NewTypedEvent(ctx, events.ProgressUpdated, id, events.ProgressUpdatedEvent{
		SessionID: id,
		Character: character,
		Trigger:   trigger,
		Update:    update,
	}))
}
