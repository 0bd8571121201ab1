package types

import (
	"time"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type SubjectKind string

const (
	SUBJECT_VENUE SubjectKind = "venue"
	SUBJECT_EVENT SubjectKind = "event"
)

// Flow is the kind of booking session a subject drives.
type Flow string

const (
	FLOW_RESERVATION  Flow = "reservation"
	FLOW_REGISTRATION Flow = "registration"
)

type Step string

const (
	STEP_DATETIME     Step = "datetime"
	STEP_PARTY_SIZE   Step = "party-size"
	STEP_REVIEW       Step = "review"
	STEP_SELECTION    Step = "selection"
	STEP_PAYMENT      Step = "payment"
	STEP_CONFIRMATION Step = "confirmation"
)

type SubmissionState string

const (
	SUBMISSION_IDLE       SubmissionState = "idle"
	SUBMISSION_SUBMITTING SubmissionState = "submitting"
	SUBMISSION_SUCCEEDED  SubmissionState = "succeeded"
	SUBMISSION_FAILED     SubmissionState = "failed"
)

type RegistrationStatus string

const (
	REGISTRATION_CONFIRMED RegistrationStatus = "confirmed"
)

type PaymentStatus string

const (
	PAYMENT_SUCCEEDED PaymentStatus = "succeeded"
	PAYMENT_FAILED    PaymentStatus = "failed"
)

type NotificationKind string

const (
	NOTIFY_BOOKING_CONFIRMED NotificationKind = "booking_confirmed"
	NOTIFY_BOOKING_CANCELED  NotificationKind = "booking_canceled"
	NOTIFY_WAITLIST_JOINED   NotificationKind = "waitlist_joined"
	NOTIFY_WAITLIST_OPENING  NotificationKind = "waitlist_opening"
)

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required"`
}

type BeginSessionRequestBody struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

type ChooseDateRequestBody struct {
	Date string `json:"date" binding:"required,bookabledate"`
}

type ChooseSlotRequestBody struct {
	Slot string `json:"slot" binding:"required"`
}

type SetTicketsRequestBody struct {
	Class    string `json:"class" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required"`
}

type SlotsQueryFilters struct {
	Date string `form:"date" binding:"required,bookabledate"`
}

type AddPaymentMethodRequestBody struct {
	Token    string `json:"token" binding:"required"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty" binding:"omitempty,len=4,numeric"`
	ExpMonth int    `json:"exp_month,omitempty" binding:"omitempty,min=1,max=12"`
	ExpYear  int    `json:"exp_year,omitempty"`
}

type FCMTokenRequestBody struct {
	Token string `json:"token" binding:"required"`
}

type Handler func(payload string)
