package booking

import (
	"artbook/src/ledger"
	"artbook/src/models"
	"artbook/src/notify"
	"artbook/src/payment"
	"artbook/src/registrations"
	"artbook/src/store"
	"artbook/src/types"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// remote is an in-memory backend that can be taken offline.
type remote[T store.Entity] struct {
	mu   sync.Mutex
	data map[string]T
	down bool
}

func newRemote[T store.Entity]() *remote[T] {
	return &remote[T]{data: map[string]T{}}
}

func (r *remote[T]) unavailable() error {
	if r.down {
		return fmt.Errorf("%w: connection refused", store.ErrUnavailable)
	}
	return nil
}

func (r *remote[T]) setDown(down bool) {
	r.mu.Lock()
	r.down = down
	r.mu.Unlock()
}

func (r *remote[T]) Get(_ context.Context, id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if err := r.unavailable(); err != nil {
		return zero, err
	}
	v, ok := r.data[id]
	if !ok {
		return zero, store.ErrNotFound
	}
	return v, nil
}

func (r *remote[T]) Create(_ context.Context, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.unavailable(); err != nil {
		return err
	}
	if _, ok := r.data[v.GetID()]; ok {
		return store.ErrConflict
	}
	r.data[v.GetID()] = v
	return nil
}

func (r *remote[T]) Save(_ context.Context, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.unavailable(); err != nil {
		return err
	}
	r.data[v.GetID()] = v
	return nil
}

func (r *remote[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.unavailable(); err != nil {
		return err
	}
	delete(r.data, id)
	return nil
}

type recorder struct {
	mu   sync.Mutex
	sent []notify.Template
}

func (r *recorder) Send(_ context.Context, _ string, t notify.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, t)
	return nil
}

func (r *recorder) kinds() []types.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.NotificationKind, 0, len(r.sent))
	for _, t := range r.sent {
		out = append(out, t.Kind)
	}
	return out
}

func (r *recorder) last() notify.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return notify.Template{}
	}
	return r.sent[len(r.sent)-1]
}

// flakyRegistrations fails the first n Create calls.
type flakyRegistrations struct {
	Registrations
	n int
}

func (f *flakyRegistrations) Create(ctx context.Context, r models.Registration) (models.Registration, error) {
	if f.n > 0 {
		f.n--
		return models.Registration{}, errors.New("registration table unavailable")
	}
	return f.Registrations.Create(ctx, r)
}

type ControllerSuite struct {
	suite.Suite
	ctx context.Context
	now time.Time

	regRemote *remote[models.Registration]
	regs      *store.DualPath[models.Registration]
	ledger    *ledger.Ledger
	store     *registrations.Store
	waitlist  *registrations.Waitlist
	gateway   *payment.FakeGateway
	sent      *recorder
	ctrl      *Controller
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	local := store.NewMemoryStore()
	timeout := time.Second

	subjects := store.NewDualPath[models.Subject]("subject", newRemote[models.Subject](), local, timeout)
	s.regRemote = newRemote[models.Registration]()
	s.regs = store.NewDualPath[models.Registration]("registration", s.regRemote, local, timeout)
	waitlist := store.NewDualPath[models.WaitlistEntry]("waitlist", newRemote[models.WaitlistEntry](), local, timeout)
	methods := store.NewDualPath[models.PaymentMethod]("payment_method", newRemote[models.PaymentMethod](), local, timeout)

	s.ledger = ledger.New(subjects)
	_, err := s.ledger.Seed(s.ctx, []models.Subject{
		{
			ID: "museum", Kind: types.SUBJECT_VENUE, Name: "City Museum", Currency: "USD",
			Total: 10, Remaining: 10, OpensAt: "10:00", ClosesAt: "18:00",
			Prices: map[string]int64{"adult": 1500, "student": 800, "child": 500, "senior": 1000},
		},
		{
			ID: "opening", Kind: types.SUBJECT_EVENT, Name: "Gallery Opening", Currency: "USD",
			Total: 10, Remaining: 10, Prices: map[string]int64{"general": 2500},
		},
		{
			ID: "last-seat", Kind: types.SUBJECT_EVENT, Name: "Artist Talk", Currency: "USD",
			Total: 10, Remaining: 1, Prices: map[string]int64{"general": 1000},
		},
		{
			ID: "sold-out", Kind: types.SUBJECT_VENUE, Name: "Sculpture Park", Currency: "USD",
			Total: 5, Remaining: 0, Prices: map[string]int64{"adult": 1200},
		},
		{
			ID: "free-talk", Kind: types.SUBJECT_EVENT, Name: "Open Studio", Currency: "USD",
			Total: 20, Remaining: 20, Prices: map[string]int64{"general": 0},
		},
		{
			ID: "unpriced", Kind: types.SUBJECT_EVENT, Name: "Members Preview", Currency: "USD",
			Total: 20, Remaining: 20, Prices: map[string]int64{"member": 1500},
		},
	})
	require.NoError(s.T(), err)

	s.store = registrations.NewStore(s.regs)
	s.gateway = payment.NewFakeGateway()
	s.sent = &recorder{}
	s.waitlist = registrations.NewWaitlist(waitlist)
	s.ctrl = NewController(Deps{
		Ledger:        s.ledger,
		Registrations: s.store,
		Waitlist:      s.waitlist,
		Methods:       payment.NewMethods(methods),
		Gateway:       s.gateway,
		Notifier:      s.sent,
	}, Options{
		Slots:          DefaultSlotPolicy(),
		PaymentTimeout: time.Second,
		NotifyTimeout:  time.Second,
		Now:            func() time.Time { return s.now },
	})
}

func (s *ControllerSuite) addCard(user string) {
	_, err := s.ctrl.AddPaymentMethod(s.ctx, user, payment.MethodDetails{Token: "tok_visa", Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030})
	require.NoError(s.T(), err)
}

// toPayment walks an event session to the payment step.
func (s *ControllerSuite) toPayment(user, subject string) View {
	v, err := s.ctrl.Begin(s.ctx, user, subject)
	require.NoError(s.T(), err)
	v, err = s.ctrl.Advance(s.ctx, user, v.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), types.STEP_PAYMENT, v.Step)
	return v
}

func (s *ControllerSuite) remaining(id string) int {
	n, err := s.ledger.Remaining(s.ctx, id)
	require.NoError(s.T(), err)
	return n
}

func (s *ControllerSuite) TestVenueReservation() {
	t := s.T()
	s.addCard("ana")
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(t, err)
	assert.Equal(t, types.FLOW_RESERVATION, v.Flow)
	assert.Equal(t, types.STEP_DATETIME, v.Step)

	v, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", v.Date)
	require.Len(t, v.Slots, 11)
	assert.Equal(t, "12:30", v.Slots[0])
	assert.Equal(t, "17:30", v.Slots[10])

	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrInvalidSlot)

	v, err = s.ctrl.ChooseSlot(s.ctx, "ana", v.ID, "14:00")
	require.NoError(t, err)
	assert.Equal(t, "14:00", v.Slot)

	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_PARTY_SIZE, v.Step)

	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrEmptyComposition)

	_, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "adult", 2)
	require.NoError(t, err)
	v, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "student", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3800), v.Quote.TotalMinor)
	assert.Equal(t, "$38.00", v.Quote.Display)

	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_REVIEW, v.Step)
	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_PAYMENT, v.Step)

	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_CONFIRMATION, v.Step)
	assert.Equal(t, types.SUBMISSION_SUCCEEDED, v.Submission)
	require.NotNil(t, v.Registration)
	assert.True(t, strings.HasPrefix(v.Registration.ConfirmationCode, "ART-"))
	assert.Equal(t, 3, v.Registration.Quantity)
	assert.Equal(t, int64(3800), v.Registration.TotalMinor)
	assert.Equal(t, map[string]int{"adult": 2, "student": 1}, v.Registration.Tickets)
	require.NotNil(t, v.Registration.SlotStart)
	assert.Equal(t, 14, v.Registration.SlotStart.Hour())
	assert.Equal(t, 7, s.remaining("museum"))
	assert.Equal(t, 1, s.gateway.Charges)
	assert.Equal(t, []types.NotificationKind{types.NOTIFY_BOOKING_CONFIRMED}, s.sent.kinds())

	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func (s *ControllerSuite) TestLoginRequired() {
	_, err := s.ctrl.Begin(s.ctx, "", "museum")
	assert.ErrorIs(s.T(), err, ErrLoginRequired)
	_, err = s.ctrl.Begin(s.ctx, "ana", "nowhere")
	assert.ErrorIs(s.T(), err, ErrSubjectNotFound)
}

func (s *ControllerSuite) TestSessionsAreScopedToTheirUser() {
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(s.T(), err)
	_, err = s.ctrl.Session("ben", v.ID)
	assert.ErrorIs(s.T(), err, ErrSessionNotFound)
	_, err = s.ctrl.Advance(s.ctx, "ben", v.ID)
	assert.ErrorIs(s.T(), err, ErrSessionNotFound)
}

func (s *ControllerSuite) TestPaymentMethodRequired() {
	t := s.T()
	v := s.toPayment("ana", "opening")
	v, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrPaymentMethodRequired)
	assert.Equal(t, types.STEP_PAYMENT, v.Step)
	assert.Equal(t, 0, s.gateway.Calls())

	s.addCard("ana")
	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_CONFIRMATION, v.Step)
}

func (s *ControllerSuite) TestUnpricedEventIsRefused() {
	_, err := s.ctrl.Begin(s.ctx, "ana", "unpriced")
	require.ErrorIs(s.T(), err, ErrBookingFailed)
	assert.ErrorIs(s.T(), err, ErrUnknownTicketClass)
	assert.Empty(s.T(), s.ctrl.sessions)
	assert.Equal(s.T(), 20, s.remaining("unpriced"))
}

func (s *ControllerSuite) TestFreeEventSkipsPayment() {
	v := s.toPayment("ana", "free-talk")
	v, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), types.STEP_CONFIRMATION, v.Step)
	assert.Equal(s.T(), 0, s.gateway.Calls())
	assert.Equal(s.T(), 19, s.remaining("free-talk"))
}

func (s *ControllerSuite) TestDeclinedPaymentLeavesNoTrace() {
	t := s.T()
	s.addCard("ana")
	s.gateway.Decline = true
	v := s.toPayment("ana", "opening")

	v, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.True(t, Visible(err))
	assert.Equal(t, types.STEP_PAYMENT, v.Step)
	assert.Equal(t, types.SUBMISSION_FAILED, v.Submission)
	assert.NotEmpty(t, v.Error)
	assert.Equal(t, 10, s.remaining("opening"))
	list, err := s.store.ListByUser(s.ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, s.sent.kinds())

	s.gateway.Decline = false
	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_CONFIRMATION, v.Step)
	require.Len(t, s.gateway.Requests, 2)
	assert.NotEqual(t, s.gateway.Requests[0].IdempotencyKey, s.gateway.Requests[1].IdempotencyKey)
	assert.Equal(t, 9, s.remaining("opening"))
}

func (s *ControllerSuite) TestDuplicateEventRegistration() {
	t := s.T()
	s.addCard("ana")
	first := s.toPayment("ana", "opening")
	second := s.toPayment("ana", "opening")

	a, err := s.ctrl.Advance(s.ctx, "ana", first.ID)
	require.NoError(t, err)
	b, err := s.ctrl.Advance(s.ctx, "ana", second.ID)
	require.NoError(t, err)

	require.NotNil(t, a.Registration)
	require.NotNil(t, b.Registration)
	assert.Equal(t, a.Registration.ID, b.Registration.ID)
	assert.Equal(t, a.Registration.ConfirmationCode, b.Registration.ConfirmationCode)
	assert.Equal(t, 1, s.gateway.Calls())
	assert.Equal(t, 9, s.remaining("opening"))

	list, err := s.store.ListByUser(s.ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	again, err := s.ctrl.Begin(s.ctx, "ana", "opening")
	require.NoError(t, err)
	assert.Equal(t, types.STEP_CONFIRMATION, again.Step)
	assert.Equal(t, a.Registration.ConfirmationCode, again.Registration.ConfirmationCode)
}

func (s *ControllerSuite) TestLastSeatGoesToOneSession() {
	t := s.T()
	s.addCard("ana")
	s.addCard("ben")
	va := s.toPayment("ana", "last-seat")
	vb := s.toPayment("ben", "last-seat")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, p := range []struct{ user, id string }{{"ana", va.ID}, {"ben", vb.ID}} {
		wg.Add(1)
		go func(i int, user, id string) {
			defer wg.Done()
			_, errs[i] = s.ctrl.Advance(s.ctx, user, id)
		}(i, p.user, p.id)
	}
	wg.Wait()

	ok, exhausted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrCapacityExhausted):
			exhausted++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, exhausted)
	assert.Equal(t, 0, s.remaining("last-seat"))
	assert.Equal(t, 1, s.gateway.Charges)
}

func (s *ControllerSuite) TestRemoteOutageStillConfirms() {
	t := s.T()
	s.addCard("ana")
	s.regRemote.setDown(true)
	v := s.toPayment("ana", "opening")

	v, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	require.NotNil(t, v.Registration)

	got, err := s.store.Get(s.ctx, v.Registration.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Registration.ConfirmationCode, got.ConfirmationCode)
	pending, err := s.regs.Pending(s.ctx)
	require.NoError(t, err)
	assert.Contains(t, pending, v.Registration.ID)

	s.regRemote.setDown(false)
	n, err := s.regs.Flush(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.regRemote.Get(s.ctx, v.Registration.ID)
	assert.NoError(t, err)
}

func (s *ControllerSuite) TestCancelReturnsCapacity() {
	t := s.T()
	s.addCard("ana")
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(t, err)
	_, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now.AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = s.ctrl.ChooseSlot(s.ctx, "ana", v.ID, "10:00")
	require.NoError(t, err)
	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	_, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "adult", 4)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
		require.NoError(t, err)
	}
	require.NotNil(t, v.Registration)
	assert.Equal(t, 6, s.remaining("museum"))

	assert.ErrorIs(t, s.ctrl.Cancel(s.ctx, "ben", v.Registration.ID), ErrNotOwner)
	require.NoError(t, s.ctrl.Cancel(s.ctx, "ana", v.Registration.ID))
	assert.Equal(t, 10, s.remaining("museum"))
	require.NoError(t, s.ctrl.Cancel(s.ctx, "ana", v.Registration.ID))
	assert.Equal(t, 10, s.remaining("museum"))

	list, err := s.ctrl.Registrations(s.ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, []types.NotificationKind{types.NOTIFY_BOOKING_CONFIRMED, types.NOTIFY_BOOKING_CANCELED}, s.sent.kinds())
}

func (s *ControllerSuite) TestNoSlotsLateInTheDay() {
	t := s.T()
	s.now = time.Date(2026, 10, 16, 17, 45, 0, 0, time.UTC)
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(t, err)
	v, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now)
	assert.ErrorIs(t, err, ErrNoSlots)
	assert.Empty(t, v.Date)
	assert.Empty(t, v.Slots)
	assert.Equal(t, types.STEP_DATETIME, v.Step)
}

func (s *ControllerSuite) TestDateWindow() {
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(s.T(), err)
	_, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now.AddDate(0, 0, -1))
	assert.ErrorIs(s.T(), err, ErrDateOutOfRange)
	_, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now.AddDate(0, 4, 0))
	assert.ErrorIs(s.T(), err, ErrDateOutOfRange)
	_, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now.AddDate(0, 3, 0))
	assert.NoError(s.T(), err)
}

func (s *ControllerSuite) TestBackKeepsSelections() {
	t := s.T()
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(t, err)
	_, err = s.ctrl.Back("ana", v.ID)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now.AddDate(0, 0, 2))
	require.NoError(t, err)
	_, err = s.ctrl.ChooseSlot(s.ctx, "ana", v.ID, "11:30")
	require.NoError(t, err)
	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	_, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "child", 2)
	require.NoError(t, err)

	v, err = s.ctrl.Back("ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_DATETIME, v.Step)
	assert.Equal(t, "11:30", v.Slot)
	assert.Equal(t, 2, v.Tickets.Quantity("child"))
}

func (s *ControllerSuite) TestPartySizeCappedByCapacity() {
	t := s.T()
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(t, err)
	_, err = s.ctrl.ChooseDate(s.ctx, "ana", v.ID, s.now.AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = s.ctrl.ChooseSlot(s.ctx, "ana", v.ID, "15:00")
	require.NoError(t, err)
	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)

	_, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "adult", 8)
	require.NoError(t, err)
	v, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "senior", 5)
	require.NoError(t, err)
	assert.Equal(t, 10, v.Tickets.Count())
	assert.Equal(t, 2, v.Tickets.Quantity("senior"))

	v, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "adult", -3)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Tickets.Quantity("adult"))

	_, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "vip", 1)
	assert.ErrorIs(t, err, ErrUnknownTicketClass)
}

func (s *ControllerSuite) TestPaymentTimeout() {
	t := s.T()
	s.addCard("ana")
	s.ctrl.opts.PaymentTimeout = 20 * time.Millisecond
	s.gateway.Delay = time.Second
	v := s.toPayment("ana", "opening")

	v, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
	assert.Equal(t, types.SUBMISSION_FAILED, v.Submission)
	assert.Equal(t, types.STEP_PAYMENT, v.Step)
	assert.Equal(t, 10, s.remaining("opening"))
}

func (s *ControllerSuite) TestRetryAfterRollbackChargesAgain() {
	t := s.T()
	s.addCard("ana")
	s.ctrl.deps.Registrations = &flakyRegistrations{Registrations: s.store, n: 1}
	v := s.toPayment("ana", "opening")

	v, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrBookingFailed)
	assert.Equal(t, types.STEP_PAYMENT, v.Step)
	require.Len(t, s.gateway.Voided, 1)
	assert.Equal(t, 0, s.gateway.Charges)
	assert.Equal(t, 10, s.remaining("opening"))

	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	require.NotNil(t, v.Registration)
	assert.NotContains(t, s.gateway.Voided, v.Registration.PaymentRef)
	assert.Equal(t, 1, s.gateway.Charges)
	require.Len(t, s.gateway.Requests, 2)
	assert.NotEqual(t, s.gateway.Requests[0].IdempotencyKey, s.gateway.Requests[1].IdempotencyKey)
	assert.Equal(t, 9, s.remaining("opening"))
}

func (s *ControllerSuite) TestRetryAfterTimeoutReusesKey() {
	t := s.T()
	s.addCard("ana")
	s.ctrl.opts.PaymentTimeout = 20 * time.Millisecond
	s.gateway.Delay = time.Second
	v := s.toPayment("ana", "opening")

	_, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.ErrorIs(t, err, ErrPaymentUnavailable)

	s.gateway.Delay = 0
	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.STEP_CONFIRMATION, v.Step)
	require.Len(t, s.gateway.Requests, 2)
	assert.Equal(t, s.gateway.Requests[0].IdempotencyKey, s.gateway.Requests[1].IdempotencyKey)
	assert.Equal(t, "cus_fake_1", s.gateway.Requests[1].CustomerRef)
}

func (s *ControllerSuite) TestChangedTicketsGetNewKey() {
	t := s.T()
	s.addCard("ana")
	s.ctrl.opts.PaymentTimeout = 20 * time.Millisecond
	s.gateway.Delay = time.Second
	v := s.toPayment("ana", "opening")

	_, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.ErrorIs(t, err, ErrPaymentUnavailable)

	s.gateway.Delay = 0
	_, err = s.ctrl.Back("ana", v.ID)
	require.NoError(t, err)
	_, err = s.ctrl.SetQuantity(s.ctx, "ana", v.ID, "general", 2)
	require.NoError(t, err)
	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	v, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), v.Registration.TotalMinor)

	require.Len(t, s.gateway.Requests, 2)
	assert.Equal(t, int64(5000), s.gateway.Requests[1].AmountMinor)
	assert.NotEqual(t, s.gateway.Requests[0].IdempotencyKey, s.gateway.Requests[1].IdempotencyKey)
}

func (s *ControllerSuite) TestNewCardKeepsCustomer() {
	t := s.T()
	s.addCard("ana")
	first, ok := s.ctrl.PaymentMethod(s.ctx, "ana")
	require.True(t, ok)
	require.NotEmpty(t, first.CustomerRef)

	s.addCard("ana")
	second, ok := s.ctrl.PaymentMethod(s.ctx, "ana")
	require.True(t, ok)
	assert.NotEqual(t, first.GatewayRef, second.GatewayRef)
	assert.Equal(t, first.CustomerRef, second.CustomerRef)

	s.addCard("ben")
	other, _ := s.ctrl.PaymentMethod(s.ctx, "ben")
	assert.NotEqual(t, first.CustomerRef, other.CustomerRef)
}

func (s *ControllerSuite) TestInputIgnoredWhileSubmitting() {
	t := s.T()
	s.addCard("ana")
	s.gateway.Delay = 200 * time.Millisecond
	v := s.toPayment("ana", "opening")

	done := make(chan error, 1)
	go func() {
		_, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
		done <- err
	}()
	require.Eventually(t, func() bool { return s.gateway.Calls() == 1 }, time.Second, 5*time.Millisecond)

	cur, err := s.ctrl.Session("ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SUBMISSION_SUBMITTING, cur.Submission)
	assert.False(t, cur.CanContinue)
	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrSubmitting)
	_, err = s.ctrl.Back("ana", v.ID)
	assert.ErrorIs(t, err, ErrSubmitting)
	assert.ErrorIs(t, s.ctrl.Close("ana", v.ID), ErrSubmitting)

	require.NoError(t, <-done)
	assert.Equal(t, 1, s.gateway.Calls())
	require.NoError(t, s.ctrl.Close("ana", v.ID))
	_, err = s.ctrl.Session("ana", v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func (s *ControllerSuite) TestWaitlistWhenSoldOut() {
	t := s.T()
	v, err := s.ctrl.Begin(s.ctx, "ana", "sold-out")
	require.NoError(t, err)
	assert.True(t, v.WaitlistOnly)
	assert.False(t, v.CanContinue)

	_, err = s.ctrl.Advance(s.ctx, "ana", v.ID)
	assert.ErrorIs(t, err, ErrWaitlistOnly)

	v, err = s.ctrl.JoinWaitlist(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	require.NotNil(t, v.Waitlisted)
	assert.Equal(t, 1, v.Waitlisted.Quantity)
	first := v.Waitlisted.ID

	v, err = s.ctrl.JoinWaitlist(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	assert.Equal(t, first, v.Waitlisted.ID)
	assert.Equal(t, 0, s.remaining("sold-out"))
	assert.Contains(t, s.sent.kinds(), types.NOTIFY_WAITLIST_JOINED)

	open, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(t, err)
	_, err = s.ctrl.JoinWaitlist(s.ctx, "ana", open.ID)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func (s *ControllerSuite) TestCancelAnnouncesOpeningToWaitlist() {
	t := s.T()
	s.addCard("ana")
	s.addCard("ben")
	v := s.toPayment("ana", "last-seat")
	v, err := s.ctrl.Advance(s.ctx, "ana", v.ID)
	require.NoError(t, err)
	require.NotNil(t, v.Registration)

	w, err := s.ctrl.Begin(s.ctx, "ben", "last-seat")
	require.NoError(t, err)
	require.True(t, w.WaitlistOnly)
	_, err = s.ctrl.JoinWaitlist(s.ctx, "ben", w.ID)
	require.NoError(t, err)

	require.NoError(t, s.ctrl.Cancel(s.ctx, "ana", v.Registration.ID))
	last := s.sent.last()
	assert.Equal(t, types.NOTIFY_WAITLIST_OPENING, last.Kind)
	assert.Equal(t, "ben", last.UserID)
	assert.Equal(t, 1, last.Quantity)

	v = s.toPayment("ben", "last-seat")
	_, err = s.ctrl.Advance(s.ctx, "ben", v.ID)
	require.NoError(t, err)
	queue, err := s.waitlist.ForSubject(s.ctx, "last-seat")
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func (s *ControllerSuite) TestSweepDropsIdleSessions() {
	v, err := s.ctrl.Begin(s.ctx, "ana", "museum")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, s.ctrl.Sweep(time.Hour))
	s.now = s.now.Add(2 * time.Hour)
	assert.Equal(s.T(), 1, s.ctrl.Sweep(time.Hour))
	_, err = s.ctrl.Session("ana", v.ID)
	assert.ErrorIs(s.T(), err, ErrSessionNotFound)
}

func (s *ControllerSuite) TestVenueSlotsListing() {
	slots, err := s.ctrl.Slots(s.ctx, "museum", s.now.AddDate(0, 0, 1))
	require.NoError(s.T(), err)
	assert.Len(s.T(), slots, 16)
	_, err = s.ctrl.Slots(s.ctx, "opening", s.now)
	assert.ErrorIs(s.T(), err, ErrInvalidStep)
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}
