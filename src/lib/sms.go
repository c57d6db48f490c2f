package lib

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SMSResult struct {
	Success   bool
	MessageID string
}

// SMSSender is the outbound notification collaborator. Failures are
// non-fatal to every caller in the engine.
type SMSSender interface {
	Send(ctx context.Context, phone string, message string) (*SMSResult, error)
}

type snsSender struct {
	inner *sns.Client
}

func (s *snsSender) Send(ctx context.Context, phone string, message string) (*SMSResult, error) {
	out, err := s.inner.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	})
	if err != nil {
		return nil, err
	}
	result := &SMSResult{Success: true}
	if out.MessageId != nil {
		result.MessageID = *out.MessageId
	}
	return result, nil
}

var smsSender SMSSender

func GetSMSSender() SMSSender {
	if smsSender != nil {
		return smsSender
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("[sms] Error loading default config: %s\n", err.Error())
		return nil
	}
	smsSender = &snsSender{inner: sns.NewFromConfig(cfg)}
	return smsSender
}

// NewSMSSender replaces the sender singleton, used by tests.
func NewSMSSender(s SMSSender) SMSSender {
	smsSender = s
	return smsSender
}
