package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/brainbox-api/internal/domain"
)

// ResetTokenRepo stores single-use reset tokens, one per identity, in a
// table of its own — never in the challenges table.
type ResetTokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewResetTokenRepo(client *dynamodb.Client, tableName string) *ResetTokenRepo {
	return &ResetTokenRepo{client: client, tableName: tableName}
}

func (r *ResetTokenRepo) Put(ctx context.Context, identityKey, tokenValue string, ttl time.Duration) error {
	t := &domain.ResetToken{
		Identity:  identityKey,
		Token:     tokenValue,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal reset token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put reset token: %w", domain.ErrStorageUnavailable)
	}
	return nil
}

func (r *ResetTokenRepo) Get(ctx context.Context, identityKey string) (*domain.ResetToken, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity", identityKey),
	})
	if err != nil {
		return nil, fmt.Errorf("get reset token: %w", domain.ErrStorageUnavailable)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reset token not found: %w", domain.ErrNotFound)
	}
	var t domain.ResetToken
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ResetTokenRepo) Delete(ctx context.Context, identityKey string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity", identityKey),
	})
	if err != nil {
		return fmt.Errorf("delete reset token: %w", domain.ErrStorageUnavailable)
	}
	return nil
}
