package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitrmart-api/internal/domain"
)

const listFanout = 8

// ProductImageRepo stores image metadata for listings.
// PK: product_id, SK: image_id (ULID, so rows come back in upload order).
type ProductImageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductImageRepo(client *dynamodb.Client, tableName string) *ProductImageRepo {
	return &ProductImageRepo{client: client, tableName: tableName}
}

func (r *ProductImageRepo) Put(ctx context.Context, img *domain.ProductImage) error {
	item, err := attributevalue.MarshalMap(img)
	if err != nil {
		return fmt.Errorf("marshal product image: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductImageRepo) ListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	images := []domain.ProductImage{}
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("product_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: productID},
		},
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.ProductImage
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		images = append(images, page...)
	}
	return images, nil
}

// ListByProducts loads the images of several listings at once, keyed by
// product id. Queries run concurrently, at most listFanout at a time, and the
// first failure is returned.
func (r *ProductImageRepo) ListByProducts(ctx context.Context, productIDs []string) (map[string][]domain.ProductImage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	out := make(map[string][]domain.ProductImage, len(productIDs))
	seen := make(map[string]bool, len(productIDs))
	sem := make(chan struct{}, listFanout)
	for _, id := range productIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			images, err := r.ListByProduct(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			out[id] = images
		}(id)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// DeleteByProduct removes every image row of a listing.
// It attempts all rows and returns the first failure.
func (r *ProductImageRepo) DeleteByProduct(ctx context.Context, productID string) error {
	images, err := r.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, img := range images {
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       compositeKey("product_id", productID, "image_id", img.ImageID),
		})
		if err != nil {
			slog.Warn("failed to delete product image row", "product_id", productID, "image_id", img.ImageID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
