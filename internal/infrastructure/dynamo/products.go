package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-referral-api/internal/domain"
)

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

// List scans the catalogue. With enabledOnly, soft-deleted products are skipped.
// The result is ordered by creation time.
func (r *ProductRepo) List(ctx context.Context, enabledOnly bool) ([]domain.Product, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	if enabledOnly {
		input.FilterExpression = aws.String("#e = :t")
		input.ExpressionAttributeNames = map[string]string{"#e": "enable"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		}
	}
	products := []domain.Product{}
	p := dynamodb.NewScanPaginator(r.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Product
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		products = append(products, batch...)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.Before(products[j].CreatedAt) })
	return products, nil
}

func (r *ProductRepo) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("product_id", productID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(product_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *ProductRepo) SetImageKey(ctx context.Context, productID, key string) error {
	return r.Update(ctx, productID, map[string]interface{}{fieldImageKey: key})
}

// SoftDelete hides the product from the shop; orders keep referencing it.
func (r *ProductRepo) SoftDelete(ctx context.Context, productID string) error {
	return r.Update(ctx, productID, map[string]interface{}{"enable": false})
}
