package sns

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/brainbox-api/internal/config"
)

// AlertPublisher notifies operators when the mail channel is failing.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, message string) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher builds an SNS-backed AlertPublisher for the configured ops
// topic. Returns an error when no topic is configured or AWS config cannot
// be loaded; the caller degrades to log-only alerting.
func NewPublisher(cfg *config.Config) (AlertPublisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &publisher{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSAlertTopicARN}, nil
}

func (p *publisher) PublishAlert(ctx context.Context, message string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Message:  &message,
	})
	return err
}
