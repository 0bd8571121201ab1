package booking

import (
	"artbook/src/models"
	"artbook/src/pricing"
	"artbook/src/types"
	"sync"
	"time"
)

var venueSteps = []types.Step{
	types.STEP_DATETIME,
	types.STEP_PARTY_SIZE,
	types.STEP_REVIEW,
	types.STEP_PAYMENT,
	types.STEP_CONFIRMATION,
}

var eventSteps = []types.Step{
	types.STEP_SELECTION,
	types.STEP_PAYMENT,
	types.STEP_CONFIRMATION,
}

// Session is one user's in-flight booking. It lives in memory only.
type Session struct {
	mu sync.Mutex

	ID           string
	UserID       string
	Subject      models.Subject
	Flow         types.Flow
	Step         types.Step
	Submission   types.SubmissionState
	Date         *time.Time
	Slots        []time.Time
	Slot         *time.Time
	Composition  pricing.Composition
	Quote        pricing.Quote
	WaitlistOnly bool
	Waitlisted   *models.WaitlistEntry
	Registration *models.Registration
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	attempt int
}

func (s *Session) steps() []types.Step {
	if s.Flow == types.FLOW_REGISTRATION {
		return eventSteps
	}
	return venueSteps
}

func (s *Session) previous() (types.Step, bool) {
	steps := s.steps()
	for i, st := range steps {
		if st == s.Step && i > 0 {
			return steps[i-1], true
		}
	}
	return "", false
}

// View is the read-only snapshot handed to callers.
type View struct {
	ID           string                `json:"id"`
	SubjectID    string                `json:"subject_id"`
	SubjectName  string                `json:"subject_name"`
	Flow         types.Flow            `json:"flow"`
	Step         types.Step            `json:"step"`
	Steps        []types.Step          `json:"steps"`
	Submission   types.SubmissionState `json:"submission"`
	CanContinue  bool                  `json:"can_continue"`
	Remaining    int                   `json:"remaining"`
	Date         string                `json:"date,omitempty"`
	Slots        []string              `json:"slots,omitempty"`
	Slot         string                `json:"slot,omitempty"`
	Tickets      pricing.Composition   `json:"tickets"`
	Quote        pricing.Quote         `json:"quote"`
	WaitlistOnly bool                  `json:"waitlist_only"`
	Waitlisted   *models.WaitlistEntry `json:"waitlisted,omitempty"`
	Registration *models.Registration  `json:"registration,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// view copies the session state. Caller holds s.mu.
func (s *Session) view() View {
	v := View{
		ID:           s.ID,
		SubjectID:    s.Subject.ID,
		SubjectName:  s.Subject.Name,
		Flow:         s.Flow,
		Step:         s.Step,
		Steps:        s.steps(),
		Submission:   s.Submission,
		Remaining:    s.Subject.Remaining,
		Tickets:      s.Composition.Clone(),
		Quote:        s.Quote,
		WaitlistOnly: s.WaitlistOnly,
		Error:        s.LastError,
	}
	v.CanContinue = s.Submission != types.SUBMISSION_SUBMITTING &&
		s.Step != types.STEP_CONFIRMATION &&
		!s.WaitlistOnly
	if s.Date != nil {
		v.Date = s.Date.Format("2006-01-02")
	}
	for _, t := range s.Slots {
		v.Slots = append(v.Slots, t.Format("15:04"))
	}
	if s.Slot != nil {
		v.Slot = s.Slot.Format("15:04")
	}
	if s.Waitlisted != nil {
		w := *s.Waitlisted
		v.Waitlisted = &w
	}
	if s.Registration != nil {
		r := *s.Registration
		v.Registration = &r
	}
	return v
}
