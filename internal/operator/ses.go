package operator

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

// EmailSender is the slice of the SES client we use.
type EmailSender interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESReporter emails incidents to the operator.
type SESReporter struct {
	client EmailSender
	from   string
	to     string
	log    logrus.FieldLogger
}

// NewSESReporter loads the default AWS credential chain for region.
func NewSESReporter(ctx context.Context, region, from, to string, log logrus.FieldLogger) (*SESReporter, error) {
	if from == "" || to == "" {
		return nil, errors.New("operator: ses reporter needs from and to addresses")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("operator: load aws config: %w", err)
	}
	log.WithFields(logrus.Fields{"region": region, "to": to}).Info("operator email enabled")
	return NewSESReporterWithClient(sesv2.NewFromConfig(cfg), from, to, log), nil
}

// NewSESReporterWithClient uses an existing client.
func NewSESReporterWithClient(c EmailSender, from, to string, log logrus.FieldLogger) *SESReporter {
	return &SESReporter{client: c, from: from, to: to, log: log}
}

func (r *SESReporter) Report(ctx context.Context, in Incident) error {
	out, err := r.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(r.from),
		Destination:      &types.Destination{ToAddresses: []string{r.to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(in.Subject()), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(in.Body()), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("operator: send incident %s: %w", in.ID, err)
	}
	r.log.WithFields(logrus.Fields{
		"incident":   in.ID,
		"message_id": aws.ToString(out.MessageId),
	}).Debug("incident emailed")
	return nil
}
