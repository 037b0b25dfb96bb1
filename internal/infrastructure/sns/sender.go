package sns

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SMSSender sends SMS messages via AWS SNS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type sender struct {
	client *sns.Client
}

// NewSender builds an SNS-backed sender. endpoint is the LocalStack URL in
// development and nil in production.
func NewSender(awsCfg aws.Config, endpoint *string) SMSSender {
	return &sender{client: sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	})}
}

func (s *sender) SendSMS(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(NormalizeIndianPhone(to)),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	})
	return err
}

// NormalizeIndianPhone turns a local 10-digit mobile number into E.164.
// Numbers that already carry a country code are returned unchanged.
func NormalizeIndianPhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	switch {
	case strings.HasPrefix(p, "+"):
		return p
	case len(p) == 12 && strings.HasPrefix(p, "91"):
		return "+" + p
	case len(p) == 11 && strings.HasPrefix(p, "0"):
		return "+91" + p[1:]
	case len(p) == 10:
		return "+91" + p
	default:
		return p
	}
}
