package sns

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-phone-auth/internal/config"
	"github.com/go-phone-auth/internal/pkg/redact"
)

// SMSSender sends SMS messages via AWS SNS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type sender struct {
	client     *sns.Client
	attributes map[string]types.MessageAttributeValue
}

func NewSender(cfg *config.Config) (SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	var clientOpts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &sender{
		client:     sns.NewFromConfig(awsCfg, clientOpts...),
		attributes: messageAttributes(cfg.SMSSenderID),
	}, nil
}

// messageAttributes marks every message transactional so carriers deliver it
// even to numbers opted out of promotional SMS.
func messageAttributes(senderID string) map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType: aws.String("String"), StringValue: aws.String(senderID),
		}
	}
	return attrs
}

func (s *sender) SendSMS(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       &to,
		Message:           &message,
		MessageAttributes: s.attributes,
	})
	return err
}

// FallbackSender picks the sender to use when NewSender fails. Outside
// production codes are only logged; production refuses to run without SNS
// since LogSender would write every code to the log.
func FallbackSender(cfg *config.Config, cause error) (SMSSender, error) {
	if cfg.IsProduction() {
		return nil, fmt.Errorf("sns sender required in production: %w", cause)
	}
	return LogSender{}, nil
}

// LogSender writes messages to the log instead of sending them.
// Used when SNS is not configured.
type LogSender struct{}

func (LogSender) SendSMS(_ context.Context, to, message string) error {
	slog.Info("sms not sent, no SNS client configured", "to", redact.Phone(to), "message", message)
	return nil
}
