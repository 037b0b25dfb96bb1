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

// WalletRepo owns the wallets table and the append-only wallet_transactions table.
type WalletRepo struct {
	client      *dynamodb.Client
	walletTable string
	txnTable    string
}

func NewWalletRepo(client *dynamodb.Client, walletTable, txnTable string) *WalletRepo {
	return &WalletRepo{client: client, walletTable: walletTable, txnTable: txnTable}
}

// Get returns the user's wallet, or a zero-balance wallet when none exists yet.
func (r *WalletRepo) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.walletTable),
		Key:            strKey("user_id", userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return &domain.Wallet{UserID: userID}, nil
	}
	var w domain.Wallet
	if err := attributevalue.UnmarshalMap(out.Item, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds txn.Amount to the wallet and appends txn in one transaction.
// Replaying a TxnID fails with ErrConflict and leaves the balance untouched.
func (r *WalletRepo) Credit(ctx context.Context, txn *domain.WalletTransaction) error {
	items, err := creditItems(r.walletTable, r.txnTable, txn)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if isTxCanceled(err) {
		return fmt.Errorf("transaction %s already applied: %w", txn.TxnID, domain.ErrConflict)
	}
	return err
}

// ListTransactions returns the user's ledger, newest first.
func (r *WalletRepo) ListTransactions(ctx context.Context, userID string, limit int32) ([]domain.WalletTransaction, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.txnTable),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	txns := []domain.WalletTransaction{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// creditItems builds the upsert-balance and append-ledger pair shared by
// every transaction that moves money into a wallet.
func creditItems(walletTable, txnTable string, txn *domain.WalletTransaction) ([]types.TransactWriteItem, error) {
	amount, err := attributevalue.Marshal(txn.Amount)
	if err != nil {
		return nil, fmt.Errorf("marshal amount: %w", err)
	}
	now, err := attributevalue.Marshal(txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("marshal timestamp: %w", err)
	}
	item, err := attributevalue.MarshalMap(txn)
	if err != nil {
		return nil, fmt.Errorf("marshal wallet transaction: %w", err)
	}
	return []types.TransactWriteItem{
		{Update: &types.Update{
			TableName:        aws.String(walletTable),
			Key:              strKey("user_id", txn.UserID),
			UpdateExpression: aws.String("SET #ua = :now ADD #bal :amt"),
			ExpressionAttributeNames: map[string]string{
				"#ua":  fieldUpdatedAt,
				"#bal": fieldBalance,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": now,
				":amt": amount,
			},
		}},
		{Put: &types.Put{
			TableName:           aws.String(txnTable),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(txn_id)"),
		}},
	}, nil
}

// nowAttr marshals t the way attributevalue stores time.Time fields.
func nowAttr(t time.Time) (types.AttributeValue, error) {
	return attributevalue.Marshal(t)
}
