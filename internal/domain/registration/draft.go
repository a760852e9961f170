package registration

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/labdesk/labdesk/internal/platform/autosave"
)

// DraftSession keeps one in-memory registration form synchronized with the
// store through the debounced auto-save controller. Field edits go through
// Edit; the session persists quietly after the debounce window, bridging
// placeholder identity to durable ids on the first save so later saves
// update instead of duplicating.
type DraftSession struct {
	mu   sync.Mutex
	in   Input
	last *Registration

	svc  *Service
	ctrl *autosave.Controller
}

// NewDraftSession opens a session over a (possibly empty) form. The session
// is marked loaded immediately: the caller hands over a fully hydrated
// input, so there is no initial-load window to guard.
func NewDraftSession(svc *Service, in Input, debounce time.Duration) *DraftSession {
	s := &DraftSession{in: in.Clone(), svc: svc}
	s.ctrl = autosave.New(autosave.Hooks{
		MinFieldsPresent: s.minFields,
		Validate:         s.validate,
		Persist:          s.persist,
	}, autosave.Config{Debounce: debounce})
	s.ctrl.MarkLoaded()
	return s
}

func (s *DraftSession) minFields() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimSpace(s.in.Name) != "" && len(s.in.TestIDs) > 0
}

func (s *DraftSession) validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.in
	return Validate(&in)
}

func (s *DraftSession) persist(ctx context.Context) error {
	// Deep copy: the save must work from the form as it stands now, and an
	// Edit landing while the write is in flight must not be able to reach
	// the copy through a shared slice or pointer field.
	s.mu.Lock()
	in := s.in.Clone()
	s.mu.Unlock()

	reg, err := s.svc.Save(ctx, &in)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// Adopt the durable ids even if fields changed while saving; the ids
	// never change once assigned.
	s.in.PatientID = in.PatientID
	s.in.VisitID = in.VisitID
	s.last = reg
	s.mu.Unlock()
	return nil
}

// Edit applies a mutation to the form and arms the debounce timer.
func (s *DraftSession) Edit(fn func(*Input)) {
	s.mu.Lock()
	fn(&s.in)
	s.mu.Unlock()
	s.ctrl.MarkDirty()
}

// Flush saves immediately, bypassing the debounce window. Validation errors
// are returned to the caller.
func (s *DraftSession) Flush(ctx context.Context) error {
	return s.ctrl.Flush(ctx)
}

// Snapshot returns an independent copy of the current form.
func (s *DraftSession) Snapshot() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in.Clone()
}

// Last returns the most recent successful save outcome, nil before the
// first save.
func (s *DraftSession) Last() *Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// State exposes the underlying controller state.
func (s *DraftSession) State() autosave.State {
	return s.ctrl.State()
}

// Close disarms the session without a final save.
func (s *DraftSession) Close() {
	s.ctrl.Close()
}
