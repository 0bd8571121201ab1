package registrations

import (
	"strings"

	"github.com/google/uuid"
)

var namespace = uuid.MustParse("6f1c2a8e-4b7d-5e93-a2c1-3d8f0b9e7a14")

// EventRegistrationID is stable for a (subject, user) pair so that repeated
// submissions land on the same record.
func EventRegistrationID(subjectID, userID string) string {
	return uuid.NewSHA1(namespace, []byte("event:"+subjectID+":"+userID)).String()
}

// ReservationID is stable for one booking session.
func ReservationID(sessionID string) string {
	return uuid.NewSHA1(namespace, []byte("reservation:"+sessionID)).String()
}

func WaitlistID(subjectID, userID string) string {
	return uuid.NewSHA1(namespace, []byte("waitlist:"+subjectID+":"+userID)).String()
}

const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewConfirmationCode returns a code like ART-7KQ2-M9XD.
func NewConfirmationCode() string {
	raw := uuid.New()
	var b strings.Builder
	b.WriteString("ART-")
	for i := 0; i < 8; i++ {
		if i == 4 {
			b.WriteByte('-')
		}
		b.WriteByte(codeAlphabet[int(raw[i])%len(codeAlphabet)])
	}
	return b.String()
}
