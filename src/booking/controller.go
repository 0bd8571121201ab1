package booking

import (
	"artbook/src/ledger"
	"artbook/src/models"
	"artbook/src/notify"
	"artbook/src/payment"
	"artbook/src/pricing"
	"artbook/src/registrations"
	"artbook/src/types"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Capacity interface {
	Get(ctx context.Context, id string) (models.Subject, error)
	Reserve(ctx context.Context, id string, qty int) error
	Release(ctx context.Context, id string, qty int) error
}

type Registrations interface {
	Create(ctx context.Context, r models.Registration) (models.Registration, error)
	Get(ctx context.Context, id string) (models.Registration, error)
	FindActiveEvent(ctx context.Context, subjectID, userID string) (models.Registration, bool)
	ListByUser(ctx context.Context, userID string) ([]models.Registration, error)
	Delete(ctx context.Context, id string) error
}

type Waitlist interface {
	Join(ctx context.Context, subjectID, userID string, qty int) (models.WaitlistEntry, error)
	Leave(ctx context.Context, subjectID, userID string) error
	ForSubject(ctx context.Context, subjectID string) ([]models.WaitlistEntry, error)
}

type PaymentMethods interface {
	Default(ctx context.Context, userID string) (models.PaymentMethod, bool)
	Put(ctx context.Context, userID string, m payment.Method) (models.PaymentMethod, error)
}

type Deps struct {
	Ledger        Capacity
	Registrations Registrations
	Waitlist      Waitlist
	Methods       PaymentMethods
	Gateway       payment.Gateway
	Notifier      notify.Dispatcher
}

type Options struct {
	Slots          SlotPolicy
	PaymentTimeout time.Duration
	NotifyTimeout  time.Duration
	Now            func() time.Time
}

// Controller drives booking sessions from subject selection to
// confirmation. It is the only caller of the payment gateway.
type Controller struct {
	deps Deps
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewController(deps Deps, opts Options) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PaymentTimeout <= 0 {
		opts.PaymentTimeout = 30 * time.Second
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	if opts.Slots.Granularity <= 0 {
		opts.Slots = DefaultSlotPolicy()
	}
	return &Controller{deps: deps, opts: opts, sessions: map[string]*Session{}}
}

// Begin opens a session for subjectID. userID comes from the identity
// provider and is required.
func (c *Controller) Begin(ctx context.Context, userID, subjectID string) (View, error) {
	if userID == "" {
		return View{}, ErrLoginRequired
	}
	subj, err := c.deps.Ledger.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ledger.ErrSubjectNotFound) {
			return View{}, ErrSubjectNotFound
		}
		return View{}, fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}

	now := c.opts.Now()
	s := &Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		Subject:     subj,
		Submission:  types.SUBMISSION_IDLE,
		Composition: pricing.NewComposition(pricing.Classes(subj.Kind)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if subj.IsVenue() {
		s.Flow = types.FLOW_RESERVATION
		s.Step = types.STEP_DATETIME
	} else {
		s.Flow = types.FLOW_REGISTRATION
		s.Step = types.STEP_SELECTION
	}

	switch {
	case !subj.IsVenue() && c.hasRegistration(ctx, subj.ID, userID, s):
	case subj.Remaining <= 0:
		s.WaitlistOnly = true
	case !subj.IsVenue():
		s.Composition.Set(pricing.ClassGeneral, 1, -1)
		if err := c.requote(s); err != nil {
			zap.S().Errorf("[booking] %s cannot be priced: %s", subj.ID, err.Error())
			return View{}, fmt.Errorf("%w: %w", ErrBookingFailed, err)
		}
	}

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
	zap.S().Infof("[booking] session %s opened by %s on %s (%s)", s.ID, userID, subj.ID, s.Flow)
	return s.view(), nil
}

// hasRegistration moves s straight to confirmation when the user already
// holds an active registration for the event.
func (c *Controller) hasRegistration(ctx context.Context, subjectID, userID string, s *Session) bool {
	existing, ok := c.deps.Registrations.FindActiveEvent(ctx, subjectID, userID)
	if !ok {
		return false
	}
	s.Step = types.STEP_CONFIRMATION
	s.Submission = types.SUBMISSION_SUCCEEDED
	s.Registration = &existing
	return true
}

func (c *Controller) session(userID, id string) (*Session, error) {
	c.mu.RLock()
	s, ok := c.sessions[id]
	c.mu.RUnlock()
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (c *Controller) Session(userID, id string) (View, error) {
	s, err := c.session(userID, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// editable checks that the session accepts step input. Caller holds s.mu.
func editable(s *Session) error {
	switch {
	case s.Submission == types.SUBMISSION_SUBMITTING:
		return ErrSubmitting
	case s.Step == types.STEP_CONFIRMATION:
		return ErrInvalidStep
	case s.WaitlistOnly:
		return ErrWaitlistOnly
	}
	return nil
}

func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now
}

// ChooseDate sets the reservation date and lists its slots. A date without
// any slot left is refused and cleared so the caller can prompt again.
func (c *Controller) ChooseDate(ctx context.Context, userID, id string, date time.Time) (View, error) {
	s, err := c.session(userID, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := editable(s); err != nil {
		return s.view(), err
	}
	if s.Step != types.STEP_DATETIME {
		return s.view(), ErrInvalidStep
	}
	now := c.opts.Now()
	if err := c.opts.Slots.CheckDate(date, now); err != nil {
		return s.view(), err
	}
	slots, err := c.opts.Slots.Slots(date, s.Subject.OpensAt, s.Subject.ClosesAt, now)
	if err != nil {
		return s.view(), fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}
	s.touch(now)
	s.Slot = nil
	if len(slots) == 0 {
		s.Date = nil
		s.Slots = nil
		return s.view(), ErrNoSlots
	}
	day := c.opts.Slots.Today(date)
	s.Date = &day
	s.Slots = slots
	return s.view(), nil
}

// ChooseSlot picks one of the date's slots by its HH:MM label.
func (c *Controller) ChooseSlot(ctx context.Context, userID, id, slot string) (View, error) {
	s, err := c.session(userID, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := editable(s); err != nil {
		return s.view(), err
	}
	if s.Step != types.STEP_DATETIME || s.Date == nil {
		return s.view(), ErrInvalidStep
	}
	now := c.opts.Now()
	slots, err := c.opts.Slots.Slots(*s.Date, s.Subject.OpensAt, s.Subject.ClosesAt, now)
	if err != nil {
		return s.view(), fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}
	s.Slots = slots
	s.touch(now)
	for _, t := range slots {
		if t.Format("15:04") == slot {
			picked := t
			s.Slot = &picked
			return s.view(), nil
		}
	}
	return s.view(), ErrInvalidSlot
}

// SetQuantity changes one ticket class. Quantities never go below zero and,
// for venues, the party never exceeds the remaining capacity.
func (c *Controller) SetQuantity(ctx context.Context, userID, id, class string, qty int) (View, error) {
	s, err := c.session(userID, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := editable(s); err != nil {
		return s.view(), err
	}
	if s.Step != types.STEP_PARTY_SIZE && s.Step != types.STEP_SELECTION {
		return s.view(), ErrInvalidStep
	}
	limit := -1
	if s.Flow == types.FLOW_RESERVATION {
		c.refreshSubject(ctx, s)
		limit = s.Subject.Remaining
	}
	if _, err := s.Composition.Set(class, qty, limit); err != nil {
		return s.view(), err
	}
	if err := c.requote(s); err != nil {
		return s.view(), err
	}
	s.touch(c.opts.Now())
	return s.view(), nil
}

// refreshSubject updates the capacity hint. Caller holds s.mu.
func (c *Controller) refreshSubject(ctx context.Context, s *Session) {
	if subj, err := c.deps.Ledger.Get(ctx, s.Subject.ID); err == nil {
		s.Subject = subj
	}
}

func (c *Controller) requote(s *Session) error {
	q, err := pricing.Price(s.Subject.Prices, s.Composition, s.Subject.Currency)
	if err != nil {
		return err
	}
	s.Quote = q
	return nil
}

// Advance is the "continue" action. From the payment step it charges the
// user and commits the booking.
func (c *Controller) Advance(ctx context.Context, userID, id string) (View, error) {
	s, err := c.session(userID, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := editable(s); err != nil {
		return s.view(), err
	}
	now := c.opts.Now()
	switch s.Step {
	case types.STEP_DATETIME:
		if s.Date == nil || s.Slot == nil {
			return s.view(), ErrInvalidSlot
		}
		if c.opts.Slots.Today(now).Equal(*s.Date) && !s.Slot.After(now) {
			s.Slot = nil
			return s.view(), ErrInvalidSlot
		}
		c.refreshSubject(ctx, s)
		s.Composition.Clamp(s.Subject.Remaining)
		if err := c.requote(s); err != nil {
			return s.view(), err
		}
		s.Step = types.STEP_PARTY_SIZE
	case types.STEP_PARTY_SIZE, types.STEP_SELECTION:
		if s.Composition.Count() == 0 {
			return s.view(), ErrEmptyComposition
		}
		if err := c.requote(s); err != nil {
			return s.view(), err
		}
		if s.Step == types.STEP_PARTY_SIZE {
			s.Step = types.STEP_REVIEW
		} else {
			s.Step = types.STEP_PAYMENT
		}
	case types.STEP_REVIEW:
		s.Step = types.STEP_PAYMENT
	case types.STEP_PAYMENT:
		return c.commit(ctx, s)
	default:
		return s.view(), ErrInvalidStep
	}
	s.LastError = ""
	s.touch(now)
	return s.view(), nil
}

// Back moves one step backwards. Nothing is committed before confirmation,
// so there is nothing to undo.
func (c *Controller) Back(userID, id string) (View, error) {
	s, err := c.session(userID, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := editable(s); err != nil {
		return s.view(), err
	}
	prev, ok := s.previous()
	if !ok {
		return s.view(), ErrInvalidStep
	}
	s.Step = prev
	s.Submission = types.SUBMISSION_IDLE
	s.LastError = ""
	s.touch(c.opts.Now())
	return s.view(), nil
}

// Close abandons the session. A payment in flight has to finish first.
func (c *Controller) Close(userID, id string) error {
	s, err := c.session(userID, id)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Submission == types.SUBMISSION_SUBMITTING {
		return ErrSubmitting
	}
	c.mu.Lock()
	delete(c.sessions, id)
	c.mu.Unlock()
	return nil
}

// Sweep drops idle sessions older than maxAge. Sessions with a payment in
// flight are kept.
func (c *Controller) Sweep(maxAge time.Duration) int {
	cutoff := c.opts.Now().Add(-maxAge)
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, s := range c.sessions {
		s.mu.Lock()
		stale := s.UpdatedAt.Before(cutoff) && s.Submission != types.SUBMISSION_SUBMITTING
		s.mu.Unlock()
		if stale {
			delete(c.sessions, id)
			n++
		}
	}
	return n
}

// settlement is what commit hands to settle once the session lock is
// released.
type settlement struct {
	sessionID   string
	userID      string
	subject     models.Subject
	flow        types.Flow
	composition pricing.Composition
	quote       pricing.Quote
	slot        *time.Time
	method      models.PaymentMethod
	attempt     int
}

// commit runs the payment step. Caller holds s.mu; it is released while the
// gateway and stores are called and held again on return.
func (c *Controller) commit(ctx context.Context, s *Session) (View, error) {
	ctx = context.WithoutCancel(ctx)
	if err := c.requote(s); err != nil {
		return s.view(), err
	}
	st := settlement{
		sessionID:   s.ID,
		userID:      s.UserID,
		subject:     s.Subject,
		flow:        s.Flow,
		composition: s.Composition.Clone(),
		quote:       s.Quote,
		slot:        s.Slot,
		attempt:     s.attempt,
	}
	if st.quote.TotalMinor > 0 {
		method, ok := c.deps.Methods.Default(ctx, s.UserID)
		if !ok {
			s.LastError = ErrPaymentMethodRequired.Error()
			return s.view(), ErrPaymentMethodRequired
		}
		st.method = method
	}

	s.Submission = types.SUBMISSION_SUBMITTING
	s.LastError = ""
	s.mu.Unlock()
	reg, err := c.settle(ctx, st)
	s.mu.Lock()

	now := c.opts.Now()
	s.touch(now)
	if err != nil {
		s.Submission = types.SUBMISSION_FAILED
		s.LastError = err.Error()
		// only an unreachable gateway may be retried under the same key
		if !errors.Is(err, ErrPaymentUnavailable) {
			s.attempt++
		}
		zap.S().Infof("[booking] session %s failed at payment: %s", s.ID, err.Error())
		return s.view(), err
	}
	s.Submission = types.SUBMISSION_SUCCEEDED
	s.Step = types.STEP_CONFIRMATION
	s.Registration = &reg
	c.refreshSubject(ctx, s)
	return s.view(), nil
}

// settle charges and commits in order: capacity re-check, authorization,
// reservation, record creation, notification.
func (c *Controller) settle(ctx context.Context, st settlement) (models.Registration, error) {
	if st.flow == types.FLOW_REGISTRATION {
		if existing, ok := c.deps.Registrations.FindActiveEvent(ctx, st.subject.ID, st.userID); ok {
			zap.S().Infof("[booking] %s already registered for %s, reusing %s", st.userID, st.subject.ID, existing.ConfirmationCode)
			return existing, nil
		}
	}

	qty := st.composition.Count()
	subj, err := c.deps.Ledger.Get(ctx, st.subject.ID)
	if err != nil {
		return models.Registration{}, ErrSubjectNotFound
	}
	if subj.Remaining < qty {
		return models.Registration{}, ErrCapacityExhausted
	}

	ref, err := c.authorize(ctx, st)
	if err != nil {
		return models.Registration{}, err
	}

	if err := c.deps.Ledger.Reserve(ctx, subj.ID, qty); err != nil {
		c.void(ctx, ref)
		if errors.Is(err, ledger.ErrInsufficientCapacity) {
			return models.Registration{}, ErrCapacityExhausted
		}
		zap.S().Errorf("[booking] reserve on %s failed: %s", subj.ID, err.Error())
		return models.Registration{}, ErrBookingFailed
	}

	rec := models.Registration{
		SubjectID:  subj.ID,
		UserID:     st.userID,
		Kind:       subj.Kind,
		Quantity:   qty,
		Tickets:    st.composition.Map(),
		TotalMinor: st.quote.TotalMinor,
		Currency:   subj.Currency,
		PaymentRef: ref,
		SlotStart:  st.slot,
	}
	if st.flow == types.FLOW_REGISTRATION {
		rec.ID = registrations.EventRegistrationID(subj.ID, st.userID)
	} else {
		rec.ID = registrations.ReservationID(st.sessionID)
	}
	created, err := c.deps.Registrations.Create(ctx, rec)
	if err != nil {
		zap.S().Errorf("[booking] could not record booking for session %s: %s", st.sessionID, err.Error())
		c.release(ctx, subj.ID, qty)
		c.void(ctx, ref)
		return models.Registration{}, ErrBookingFailed
	}
	if created.PaymentRef != ref {
		// another submission already holds this record
		c.release(ctx, subj.ID, qty)
		c.void(ctx, ref)
		return created, nil
	}

	zap.S().Infof("[booking] %s booked %d on %s, code %s", st.userID, qty, subj.ID, created.ConfirmationCode)
	if err := c.deps.Waitlist.Leave(ctx, subj.ID, st.userID); err != nil {
		zap.S().Warnf("[booking] could not clear waitlist entry of %s on %s: %s", st.userID, subj.ID, err.Error())
	}
	c.notify(ctx, types.NOTIFY_BOOKING_CONFIRMED, subj, created)
	return created, nil
}

func (c *Controller) authorize(ctx context.Context, st settlement) (string, error) {
	if st.quote.TotalMinor == 0 {
		return "", nil
	}
	pctx, cancel := context.WithTimeout(ctx, c.opts.PaymentTimeout)
	defer cancel()
	out, err := c.deps.Gateway.Authorize(pctx, payment.AuthorizeRequest{
		AmountMinor:    st.quote.TotalMinor,
		Currency:       st.quote.Currency,
		MethodRef:      st.method.GatewayRef,
		CustomerRef:    st.method.CustomerRef,
		IdempotencyKey: idempotencyKey(st),
		Description:    st.subject.Name,
	})
	if err != nil {
		zap.S().Warnf("[booking] payment for session %s did not complete: %s", st.sessionID, err.Error())
		return "", ErrPaymentUnavailable
	}
	if !out.Succeeded() {
		if out.Message != "" {
			return "", fmt.Errorf("%w: %s", ErrPaymentDeclined, out.Message)
		}
		return "", ErrPaymentDeclined
	}
	return out.Reference, nil
}

// idempotencyKey identifies one charge attempt. Changing the amount or the
// card yields a new key even within the same attempt.
func idempotencyKey(st settlement) string {
	name := fmt.Sprintf("%s|%d|%d|%s|%s|%s", st.sessionID, st.attempt, st.quote.TotalMinor,
		st.quote.Currency, st.method.CustomerRef, st.method.GatewayRef)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func (c *Controller) void(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := c.deps.Gateway.Void(ctx, ref); err != nil {
		zap.S().Errorf("[booking] could not void payment %s: %s", ref, err.Error())
	}
}

func (c *Controller) release(ctx context.Context, subjectID string, qty int) {
	if err := c.deps.Ledger.Release(ctx, subjectID, qty); err != nil {
		zap.S().Errorf("[booking] could not release %d on %s: %s", qty, subjectID, err.Error())
	}
}

func (c *Controller) notify(ctx context.Context, kind types.NotificationKind, subj models.Subject, r models.Registration) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.NotifyTimeout)
	defer cancel()
	t := notify.Template{
		Kind:             kind,
		UserID:           r.UserID,
		SubjectID:        subj.ID,
		SubjectName:      subj.Name,
		RegistrationID:   r.ID,
		ConfirmationCode: r.ConfirmationCode,
		Quantity:         r.Quantity,
		Tickets:          r.Tickets,
		Total:            pricing.Format(r.TotalMinor, r.Currency),
		SlotStart:        r.SlotStart,
		SentAt:           c.opts.Now(),
	}
	if err := c.deps.Notifier.Send(nctx, r.UserID, t); err != nil {
		zap.S().Warnf("[booking] %s notification for %s not delivered: %s", kind, r.ID, err.Error())
	}
}

// JoinWaitlist records interest in a sold-out subject. It does not touch
// capacity and creates no registration.
func (c *Controller) JoinWaitlist(ctx context.Context, userID, id string) (View, error) {
	s, err := c.session(userID, id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Submission == types.SUBMISSION_SUBMITTING {
		return s.view(), ErrSubmitting
	}
	if s.Step == types.STEP_CONFIRMATION {
		return s.view(), ErrInvalidStep
	}
	c.refreshSubject(ctx, s)
	if !s.WaitlistOnly && s.Subject.Remaining > 0 {
		return s.view(), ErrInvalidStep
	}
	qty := s.Composition.Count()
	e, err := c.deps.Waitlist.Join(ctx, s.Subject.ID, userID, qty)
	if err != nil {
		return s.view(), fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}
	s.Waitlisted = &e
	s.WaitlistOnly = true
	s.touch(c.opts.Now())
	c.notify(ctx, types.NOTIFY_WAITLIST_JOINED, s.Subject, models.Registration{
		ID:       e.ID,
		UserID:   userID,
		Quantity: e.Quantity,
		Currency: s.Subject.Currency,
	})
	return s.view(), nil
}

// Cancel removes a registration and returns its places to the subject.
// Cancelling a missing or already cancelled registration does nothing.
func (c *Controller) Cancel(ctx context.Context, userID, registrationID string) error {
	if userID == "" {
		return ErrLoginRequired
	}
	r, err := c.deps.Registrations.Get(ctx, registrationID)
	if err != nil {
		return nil
	}
	if r.UserID != userID {
		return ErrNotOwner
	}
	if err := c.deps.Registrations.Delete(ctx, r.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}
	c.release(ctx, r.SubjectID, r.Quantity)

	subj, err := c.deps.Ledger.Get(ctx, r.SubjectID)
	if err != nil {
		subj = models.Subject{ID: r.SubjectID}
	}
	zap.S().Infof("[booking] %s cancelled %s on %s", userID, r.ID, r.SubjectID)
	c.notify(ctx, types.NOTIFY_BOOKING_CANCELED, subj, r)
	c.announceOpening(ctx, subj)
	return nil
}

// announceOpening tells the longest-waiting user whose party now fits that
// places opened up. The entry stays queued until that user books.
func (c *Controller) announceOpening(ctx context.Context, subj models.Subject) {
	if subj.Remaining <= 0 {
		return
	}
	queue, err := c.deps.Waitlist.ForSubject(ctx, subj.ID)
	if err != nil {
		zap.S().Warnf("[booking] could not read waitlist of %s: %s", subj.ID, err.Error())
		return
	}
	for _, e := range queue {
		if e.Quantity > subj.Remaining {
			continue
		}
		c.notify(ctx, types.NOTIFY_WAITLIST_OPENING, subj, models.Registration{
			ID:       e.ID,
			UserID:   e.UserID,
			Quantity: e.Quantity,
			Currency: subj.Currency,
		})
		return
	}
}

func (c *Controller) Registrations(ctx context.Context, userID string) ([]models.Registration, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	return c.deps.Registrations.ListByUser(ctx, userID)
}

// AddPaymentMethod registers a card with the gateway and makes it the
// user's default. The caller then retries the payment step.
func (c *Controller) AddPaymentMethod(ctx context.Context, userID string, d payment.MethodDetails) (models.PaymentMethod, error) {
	if userID == "" {
		return models.PaymentMethod{}, ErrLoginRequired
	}
	d.UserID = userID
	if current, ok := c.deps.Methods.Default(ctx, userID); ok {
		d.CustomerRef = current.CustomerRef
	}
	pctx, cancel := context.WithTimeout(ctx, c.opts.PaymentTimeout)
	defer cancel()
	m, err := c.deps.Gateway.CreatePaymentMethod(pctx, d)
	if err != nil {
		zap.S().Warnf("[booking] could not create payment method for %s: %s", userID, err.Error())
		return models.PaymentMethod{}, ErrPaymentUnavailable
	}
	return c.deps.Methods.Put(ctx, userID, m)
}

func (c *Controller) PaymentMethod(ctx context.Context, userID string) (models.PaymentMethod, bool) {
	return c.deps.Methods.Default(ctx, userID)
}

// Slots lists the open slots of a venue on date.
func (c *Controller) Slots(ctx context.Context, subjectID string, date time.Time) ([]time.Time, error) {
	subj, err := c.deps.Ledger.Get(ctx, subjectID)
	if err != nil {
		return nil, ErrSubjectNotFound
	}
	if !subj.IsVenue() {
		return nil, ErrInvalidStep
	}
	now := c.opts.Now()
	if err := c.opts.Slots.CheckDate(date, now); err != nil {
		return nil, err
	}
	return c.opts.Slots.Slots(date, subj.OpensAt, subj.ClosesAt, now)
}

func (c *Controller) SlotPolicy() SlotPolicy {
	return c.opts.Slots
}
