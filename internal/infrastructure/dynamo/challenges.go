package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/brainbox-api/internal/domain"
)

// ChallengeRepo is the durable side of the OTP ledger: identity → pending
// challenge. PK: identity. DynamoDB TTL on expires_at bounds storage growth;
// TTL deletion is lazy, so callers still check expiry on read.
type ChallengeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChallengeRepo(client *dynamodb.Client, tableName string) *ChallengeRepo {
	return &ChallengeRepo{client: client, tableName: tableName}
}

// Put unconditionally replaces any existing challenge for the identity with
// a fresh record (attempts reset to zero).
func (r *ChallengeRepo) Put(ctx context.Context, identityKey, code string, ttl time.Duration) error {
	v := &domain.PendingVerification{
		Identity:  identityKey,
		Code:      code,
		ExpiresAt: time.Now().Add(ttl).Unix(),
		Attempts:  0,
	}
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put challenge: %w", domain.ErrStorageUnavailable)
	}
	return nil
}

// Get returns the stored challenge, expired or not. Expiry policy lives in
// the reset controller so it can tell Expired apart from NotFound.
func (r *ChallengeRepo) Get(ctx context.Context, identityKey string) (*domain.PendingVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity", identityKey),
	})
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", domain.ErrStorageUnavailable)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("challenge not found: %w", domain.ErrNotFound)
	}
	var v domain.PendingVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// IncrementAttempts bumps the failed-attempt counter by one and returns the
// new count. The ADD update is atomic server-side, so two concurrent calls
// for the same identity can never lose an increment. A missing record is a
// no-op returning zero.
func (r *ChallengeRepo) IncrementAttempts(ctx context.Context, identityKey string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("identity", identityKey),
		UpdateExpression:    aws.String("ADD attempts :one"),
		ConditionExpression: aws.String("attribute_exists(identity)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, nil
		}
		return 0, fmt.Errorf("increment attempts: %w", domain.ErrStorageUnavailable)
	}
	var updated struct {
		Attempts int `dynamodbav:"attempts"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, err
	}
	return updated.Attempts, nil
}

// Delete removes any challenge for the identity. Idempotent.
func (r *ChallengeRepo) Delete(ctx context.Context, identityKey string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity", identityKey),
	})
	if err != nil {
		return fmt.Errorf("delete challenge: %w", domain.ErrStorageUnavailable)
	}
	return nil
}
