package notify

import (
	"artbook/src/types"
	"context"
	"errors"
	"fmt"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Messenger is the part of the FCM client the push dispatcher needs.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushDispatcher sends a device notification to the user's registered FCM
// token. Users without a token are skipped.
type PushDispatcher struct {
	rd        *redis.Client
	messenger Messenger
}

func NewPushDispatcher(rd *redis.Client, m Messenger) *PushDispatcher {
	return &PushDispatcher{rd: rd, messenger: m}
}

func tokenKey(userID string) string {
	return fmt.Sprintf("%s:fcm", userID)
}

func (p *PushDispatcher) SaveToken(ctx context.Context, userID, token string) error {
	return p.rd.Set(ctx, tokenKey(userID), token, 0).Err()
}

func (p *PushDispatcher) Send(ctx context.Context, userID string, t Template) error {
	token, err := p.rd.Get(ctx, tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) || token == "" {
		return nil
	}
	if err != nil {
		return err
	}
	title, body := pushText(t)
	id, err := p.messenger.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"kind":              string(t.Kind),
			"subject_id":        t.SubjectID,
			"registration_id":   t.RegistrationID,
			"confirmation_code": t.ConfirmationCode,
			"quantity":          strconv.Itoa(t.Quantity),
		},
	})
	if err != nil {
		return err
	}
	zap.S().Debugf("[push] sent %s to %s: %s", t.Kind, userID, id)
	return nil
}

func pushText(t Template) (string, string) {
	switch t.Kind {
	case types.NOTIFY_BOOKING_CANCELED:
		return "Booking cancelled", fmt.Sprintf("Your booking for %s was cancelled.", t.SubjectName)
	case types.NOTIFY_WAITLIST_JOINED:
		return "You're on the waitlist", fmt.Sprintf("We'll let you know if places open up for %s.", t.SubjectName)
	case types.NOTIFY_WAITLIST_OPENING:
		return "Places available", fmt.Sprintf("%d place(s) just opened up for %s. Book now before they go.", t.Quantity, t.SubjectName)
	default:
		return "Booking confirmed", fmt.Sprintf("%s: %d ticket(s), code %s", t.SubjectName, t.Quantity, t.ConfirmationCode)
	}
}
