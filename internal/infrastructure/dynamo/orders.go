package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-referral-api/internal/domain"
)

type OrderRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOrderRepo(client *dynamodb.Client, tableName string) *OrderRepo {
	return &OrderRepo{client: client, tableName: tableName}
}

func (r *OrderRepo) Put(ctx context.Context, o *domain.Order) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("order_id", orderID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	var o domain.Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders := []domain.Order{}
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
	}
	return orders, nil
}

func (r *OrderRepo) All(ctx context.Context) ([]domain.Order, error) {
	orders := []domain.Order{}
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
	}
	return orders, nil
}

// CreatedInYear returns the creation times of orders placed in year (UTC).
func (r *OrderRepo) CreatedInYear(ctx context.Context, year int) ([]time.Time, error) {
	return createdInYear(ctx, r.client, r.tableName, year)
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	return r.update(ctx, orderID, map[string]interface{}{fieldStatus: status})
}

// MarkPaid records the gateway payment id and moves a pending order to paid.
// Orders that are not pending are rejected with ErrConflict.
func (r *OrderRepo) MarkPaid(ctx context.Context, orderID, paymentID string) error {
	now, err := nowAttr(time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("order_id", orderID),
		UpdateExpression:    aws.String("SET #s = :paid, #pid = :pid, #ua = :now"),
		ConditionExpression: aws.String("#s = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#s":   fieldStatus,
			"#pid": fieldPaymentID,
			"#ua":  fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":paid":    &types.AttributeValueMemberS{Value: domain.OrderStatusPaid},
			":pending": &types.AttributeValueMemberS{Value: domain.OrderStatusPending},
			":pid":     &types.AttributeValueMemberS{Value: paymentID},
			":now":     now,
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("order %s is not pending: %w", orderID, domain.ErrConflict)
	}
	return err
}

func (r *OrderRepo) Delete(ctx context.Context, orderID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("order_id", orderID),
		ConditionExpression: aws.String("attribute_exists(order_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *OrderRepo) update(ctx context.Context, orderID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("order_id", orderID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(order_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	return err
}
