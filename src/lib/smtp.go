package lib

import (
	"artbook/src/config"
	"bytes"
	"context"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

func GetSMTPClient() (*mail.Client, error) {
	cfg := config.Get()
	c, err := mail.NewClient(
		cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
	)
	if err != nil {
		zap.S().Errorf("Could not initialize smtp client: %s", err.Error())
		return nil, err
	}
	return c, nil
}

type Attachment struct {
	Name string
	Data []byte
}

type SendMailInput struct {
	From        string
	FromName    string
	To          []string
	ReplyTo     string
	Subject     string
	Body        string
	Html        bool
	Attachments []Attachment
}

// BuildMessage turns the input into a go-mail message.
func BuildMessage(in *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(in.FromName, in.From); err != nil {
		return nil, err
	}
	if err := msg.To(in.To...); err != nil {
		return nil, err
	}
	if in.ReplyTo != "" {
		if err := msg.ReplyTo(in.ReplyTo); err != nil {
			zap.S().Warnf("Failed to set Reply-To address: %s", err.Error())
		}
	}
	msg.Subject(in.Subject)
	if in.Html {
		msg.SetBodyString(mail.TypeTextHTML, in.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, in.Body)
	}
	for _, a := range in.Attachments {
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data)); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func SendMail(ctx context.Context, in *SendMailInput) error {
	msg, err := BuildMessage(in)
	if err != nil {
		return err
	}
	c, err := GetSMTPClient()
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}
