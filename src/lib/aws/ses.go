package aws

import (
	"artbook/src/lib"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// SESSendMessage sends a raw MIME message, which is how attachments reach
// SES.
func SESSendMessage(ctx context.Context, from string, to []string, raw []byte) error {
	c, err := lib.AWSGetSESClient()
	if err != nil {
		return err
	}
	out, err := c.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(from),
		Destinations: to,
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return err
	}
	zap.S().Infof("[ses] sent email with id: %s", aws.ToString(out.MessageId))
	return nil
}
