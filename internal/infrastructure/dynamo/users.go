package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/brainbox-api/internal/domain"
)

// UserRepo is the credential store. The reset flow only ever writes a new
// password hash; account management lives elsewhere.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// UpdatePasswordHash writes the new hash for the given email, creating the
// record if it does not exist yet.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		"password_hash": hash,
		"updated_at":    time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("update password: %w", domain.ErrStorageUnavailable)
	}
	return nil
}
