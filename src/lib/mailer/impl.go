package mailer

import (
	"artbook/src/config"
	"artbook/src/lib"
	awslib "artbook/src/lib/aws"
	"bytes"
	"context"
	"fmt"
)

// Sender delivers a composed mail.
type Sender interface {
	Send(ctx context.Context, in *lib.SendMailInput) error
}

type SMTPSender struct{}

func (SMTPSender) Send(ctx context.Context, in *lib.SendMailInput) error {
	return lib.SendMail(ctx, in)
}

// SESSender renders the message to MIME and hands it to SES.
type SESSender struct{}

func (SESSender) Send(ctx context.Context, in *lib.SendMailInput) error {
	msg, err := lib.BuildMessage(in)
	if err != nil {
		return err
	}
	var raw bytes.Buffer
	if _, err := msg.WriteTo(&raw); err != nil {
		return fmt.Errorf("could not render message: %w", err)
	}
	return awslib.SESSendMessage(ctx, in.From, in.To, raw.Bytes())
}

// NewSender picks the transport named by MAIL_TRANSPORT.
func NewSender(cfg *config.Config) Sender {
	if cfg.MailTransport == "ses" {
		return SESSender{}
	}
	return SMTPSender{}
}
