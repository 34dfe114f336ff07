package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitrmart-api/internal/domain"
)

const (
	feedIndex   = "status-posted_at-index"
	sellerIndex = "seller_id-posted_at-index"
)

// ProductRepo provides typed DynamoDB operations for the products table.
// PK: product_id. The status attribute mirrors is_sold so the feed index can
// serve unsold listings newest first.
type ProductRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepo(client *dynamodb.Client, tableName string) *ProductRepo {
	return &ProductRepo{client: client, tableName: tableName}
}

func (r *ProductRepo) Put(ctx context.Context, p *domain.Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	item[fieldStatus] = &types.AttributeValueMemberS{Value: listingStatus(p.IsSold)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_id", productID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	var p domain.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial update and keeps status in step with is_sold.
func (r *ProductRepo) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	if sold, ok := updates[fieldIsSold].(bool); ok {
		updates[fieldStatus] = listingStatus(sold)
	}
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("product_id", productID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(product_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_id", productID),
	})
	return err
}

// QueryFeed returns unsold listings newest first. With f.SellerID set the
// seller index is used instead of the feed index. Category is applied as a
// filter, so a page may hold fewer than f.Limit items while a cursor remains.
func (r *ProductRepo) QueryFeed(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error) {
	names := map[string]string{"#k": fieldStatus}
	values := map[string]types.AttributeValue{
		":k": &types.AttributeValueMemberS{Value: statusAvailable},
	}
	index := feedIndex
	var filters []string
	if f.SellerID != "" {
		index = sellerIndex
		names["#k"] = "seller_id"
		values[":k"] = &types.AttributeValueMemberS{Value: f.SellerID}
		names["#s"] = fieldIsSold
		values[":f"] = &types.AttributeValueMemberBOOL{Value: false}
		filters = append(filters, "#s = :f")
	}
	if f.Category != "" {
		names["#c"] = "category"
		values[":c"] = &types.AttributeValueMemberS{Value: f.Category}
		filters = append(filters, "#c = :c")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :k"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(f.Limit)),
	}
	if len(filters) > 0 {
		input.FilterExpression = aws.String(strings.Join(filters, " AND "))
	}
	if f.Cursor != "" {
		key, err := decodeCursor(f.Cursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = key
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	products := []domain.Product{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, "", err
	}
	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return products, next, nil
}
