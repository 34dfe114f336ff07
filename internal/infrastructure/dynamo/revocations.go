package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nitrmart-api/internal/domain"
)

// RevocationRepo is the refresh-token blacklist. PK: jti.
// Rows expire through the table TTL once the token would have expired anyway.
type RevocationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRevocationRepo(client *dynamodb.Client, tableName string) *RevocationRepo {
	return &RevocationRepo{client: client, tableName: tableName}
}

// Revoke records jti as revoked until expiresAt. Revoking twice is harmless.
func (r *RevocationRepo) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	item, err := attributevalue.MarshalMap(domain.RevokedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		TTL:       expiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal revoked token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RevocationRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.tableName),
		Key:                  strKey("jti", jti),
		ProjectionExpression: aws.String("jti"),
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}
