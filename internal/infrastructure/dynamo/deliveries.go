package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/brainbox-api/internal/domain"
)

// DeliveryRepo is the append-only audit trail of code-delivery attempts.
// PK: delivery_id (ULID), GSI identity-created_at-index for per-identity lookups.
type DeliveryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeliveryRepo(client *dynamodb.Client, tableName string) *DeliveryRepo {
	return &DeliveryRepo{client: client, tableName: tableName}
}

func (r *DeliveryRepo) Put(ctx context.Context, rec *domain.DeliveryRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal delivery record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
