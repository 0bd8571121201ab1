package common

import (
	"artbook/src/lib"
	"artbook/src/lib/mailer"
	"artbook/src/models"
	"artbook/src/types"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var ErrInvalidPayload = errors.New("invalid confirmation payload")

type UserDirectory interface {
	Find(ctx context.Context, id string) (models.User, error)
}

// Confirmations renders queued booking notifications into mails.
type Confirmations struct {
	users    UserDirectory
	sender   mailer.Sender
	from     string
	fromName string
	timeout  time.Duration
}

func NewConfirmations(users UserDirectory, sender mailer.Sender, from, fromName string) *Confirmations {
	return &Confirmations{users: users, sender: sender, from: from, fromName: fromName, timeout: 30 * time.Second}
}

// Handle is the queue callback. Failures are logged and the message is
// dropped.
func (c *Confirmations) Handle(payload string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.Process(ctx, payload); err != nil {
		zap.S().Errorf("[confirmations] %s", err.Error())
	}
}

func (c *Confirmations) Process(ctx context.Context, payload string) error {
	if !gjson.Valid(payload) {
		return ErrInvalidPayload
	}
	msg := gjson.Parse(payload)
	userID := msg.Get("user_id").String()
	if userID == "" {
		return fmt.Errorf("%w: missing user_id", ErrInvalidPayload)
	}
	user, err := c.users.Find(ctx, userID)
	if err != nil {
		return fmt.Errorf("no address for user %s: %w", userID, err)
	}
	in, err := c.render(msg, user)
	if err != nil {
		return err
	}
	if err := c.sender.Send(ctx, in); err != nil {
		return fmt.Errorf("could not send %s mail to %s: %w", msg.Get("kind").String(), userID, err)
	}
	zap.S().Infof("[confirmations] sent %s mail for %s", msg.Get("kind").String(), msg.Get("registration_id").String())
	return nil
}

func (c *Confirmations) render(msg gjson.Result, user models.User) (*lib.SendMailInput, error) {
	name := html.EscapeString(msg.Get("subject_name").String())
	code := msg.Get("confirmation_code").String()
	in := &lib.SendMailInput{
		From:     c.from,
		FromName: c.fromName,
		To:       []string{user.Email},
		Html:     true,
	}

	var b strings.Builder
	greeting := user.Name
	if greeting == "" {
		greeting = "there"
	}
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(greeting))

	switch types.NotificationKind(msg.Get("kind").String()) {
	case types.NOTIFY_BOOKING_CONFIRMED:
		in.Subject = fmt.Sprintf("Your booking for %s is confirmed", msg.Get("subject_name").String())
		fmt.Fprintf(&b, "<p>Your booking for <b>%s</b> is confirmed.</p>", name)
		fmt.Fprintf(&b, "<p>Confirmation code: <b>%s</b></p>", html.EscapeString(code))
		if slot := msg.Get("slot_start"); slot.Exists() {
			if t, err := time.Parse(time.RFC3339, slot.String()); err == nil {
				fmt.Fprintf(&b, "<p>When: %s</p>", t.Format("Mon, 02 Jan 2006 15:04"))
			}
		}
		b.WriteString("<ul>")
		msg.Get("tickets").ForEach(func(k, v gjson.Result) bool {
			fmt.Fprintf(&b, "<li>%s &times; %d</li>", html.EscapeString(k.String()), v.Int())
			return true
		})
		b.WriteString("</ul>")
		if total := msg.Get("total").String(); total != "" {
			fmt.Fprintf(&b, "<p>Total: %s</p>", html.EscapeString(total))
		}
		if code != "" {
			qr, err := lib.QRCode(code)
			if err != nil {
				return nil, fmt.Errorf("could not render QR code: %w", err)
			}
			in.Attachments = append(in.Attachments, lib.Attachment{Name: "ticket.jpeg", Data: qr})
		}
	case types.NOTIFY_BOOKING_CANCELED:
		in.Subject = fmt.Sprintf("Your booking for %s was cancelled", msg.Get("subject_name").String())
		fmt.Fprintf(&b, "<p>Your booking <b>%s</b> for <b>%s</b> has been cancelled.</p>", html.EscapeString(code), name)
	case types.NOTIFY_WAITLIST_JOINED:
		in.Subject = fmt.Sprintf("You're on the waitlist for %s", msg.Get("subject_name").String())
		fmt.Fprintf(&b, "<p>You're on the waitlist for <b>%s</b> for %d place(s).</p>", name, msg.Get("quantity").Int())
	case types.NOTIFY_WAITLIST_OPENING:
		in.Subject = fmt.Sprintf("Places opened up for %s", msg.Get("subject_name").String())
		fmt.Fprintf(&b, "<p>Good news: there is room again at <b>%s</b> for your party of %d. Places go to whoever books first.</p>", name, msg.Get("quantity").Int())
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidPayload, msg.Get("kind").String())
	}
	in.Body = b.String()
	return in, nil
}
