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

// TopUpRepo stores PhonePe funding intents. Completing one also credits the
// wallet, so the repo knows the wallet tables too.
type TopUpRepo struct {
	client      *dynamodb.Client
	tableName   string
	walletTable string
	txnTable    string
}

func NewTopUpRepo(client *dynamodb.Client, tableName, walletTable, txnTable string) *TopUpRepo {
	return &TopUpRepo{client: client, tableName: tableName, walletTable: walletTable, txnTable: txnTable}
}

func (r *TopUpRepo) Put(ctx context.Context, t *domain.TopUp) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal topup: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TopUpRepo) Get(ctx context.Context, topUpID string) (*domain.TopUp, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("topup_id", topUpID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("topup not found: %w", domain.ErrNotFound)
	}
	var t domain.TopUp
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Complete flips a pending top-up to success and credits txn in the same
// transaction. A top-up that is no longer pending yields ErrConflict.
func (r *TopUpRepo) Complete(ctx context.Context, topUpID string, txn *domain.WalletTransaction) error {
	status, err := r.statusUpdate(topUpID, domain.TopUpStatusSuccess, txn.CreatedAt)
	if err != nil {
		return err
	}
	credit, err := creditItems(r.walletTable, r.txnTable, txn)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: append([]types.TransactWriteItem{status}, credit...),
	})
	if isTxCanceled(err) {
		return fmt.Errorf("topup %s already settled: %w", topUpID, domain.ErrConflict)
	}
	return err
}

// Fail marks a pending top-up as failed.
func (r *TopUpRepo) Fail(ctx context.Context, topUpID string, at time.Time) error {
	status, err := r.statusUpdate(topUpID, domain.TopUpStatusFailed, at)
	if err != nil {
		return err
	}
	u := status.Update
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 u.TableName,
		Key:                       u.Key,
		UpdateExpression:          u.UpdateExpression,
		ConditionExpression:       u.ConditionExpression,
		ExpressionAttributeNames:  u.ExpressionAttributeNames,
		ExpressionAttributeValues: u.ExpressionAttributeValues,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("topup %s already settled: %w", topUpID, domain.ErrConflict)
	}
	return err
}

func (r *TopUpRepo) statusUpdate(topUpID, status string, at time.Time) (types.TransactWriteItem, error) {
	now, err := nowAttr(at)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{Update: &types.Update{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("topup_id", topUpID),
		UpdateExpression:    aws.String("SET #s = :s, #ua = :now"),
		ConditionExpression: aws.String("#s = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#s":  fieldStatus,
			"#ua": fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s":       &types.AttributeValueMemberS{Value: status},
			":pending": &types.AttributeValueMemberS{Value: domain.TopUpStatusPending},
			":now":     now,
		},
	}}, nil
}
