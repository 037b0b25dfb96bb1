package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-referral-api/internal/config"
	"github.com/go-referral-api/internal/domain"
)

// Positions inside the registration transaction. CancellationReasons are
// reported in the same order, which is how a failed OTP consume is told apart
// from other condition failures.
const (
	txUser = iota
	txOtp
	txOwnReferral
	txReferrer
	txReferralEntry
)

// RegistrationRepo commits the OTP-verification cascade as a single
// TransactWriteItems call across users, otps, referrals, referral_entries,
// wallets and wallet_transactions.
type RegistrationRepo struct {
	client *dynamodb.Client
	tables config.DynamoTables
}

func NewRegistrationRepo(client *dynamodb.Client, tables config.DynamoTables) *RegistrationRepo {
	return &RegistrationRepo{client: client, tables: tables}
}

func (r *RegistrationRepo) Commit(ctx context.Context, c *domain.RegistrationCascade) error {
	items, err := registrationItems(r.tables, c)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err == nil {
		return nil
	}
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return err
	}
	for i, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case txOtp:
			return domain.ErrInvalidOtp
		case txReferrer:
			return fmt.Errorf("referrer ledger missing: %w", domain.ErrNotFound)
		default:
			return fmt.Errorf("registration write rejected: %w", domain.ErrConflict)
		}
	}
	return fmt.Errorf("registration cancelled: %w", domain.ErrConflict)
}

func registrationItems(tables config.DynamoTables, c *domain.RegistrationCascade) ([]types.TransactWriteItem, error) {
	user, err := attributevalue.MarshalMap(c.User)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	ref, err := attributevalue.MarshalMap(c.Referral)
	if err != nil {
		return nil, fmt.Errorf("marshal referral: %w", err)
	}
	consume := consumeOtpInput(tables.Otps, c.Otp.Target, c.Otp.OtpID)

	items := []types.TransactWriteItem{
		txUser: {Put: &types.Put{
			TableName:           aws.String(tables.Users),
			Item:                user,
			ConditionExpression: aws.String("attribute_not_exists(user_id)"),
		}},
		txOtp: {Update: &types.Update{
			TableName:                 consume.TableName,
			Key:                       consume.Key,
			UpdateExpression:          consume.UpdateExpression,
			ConditionExpression:       consume.ConditionExpression,
			ExpressionAttributeNames:  consume.ExpressionAttributeNames,
			ExpressionAttributeValues: consume.ExpressionAttributeValues,
		}},
		txOwnReferral: {Put: &types.Put{
			TableName:           aws.String(tables.Referrals),
			Item:                ref,
			ConditionExpression: aws.String("attribute_not_exists(user_id)"),
		}},
	}
	if c.Reward == nil {
		return items, nil
	}

	rewardItem, err := referrerUpdate(tables.Referrals, c.Reward)
	if err != nil {
		return nil, err
	}
	entry, err := attributevalue.MarshalMap(newReferralEntryItem(c.Reward))
	if err != nil {
		return nil, fmt.Errorf("marshal referral entry: %w", err)
	}
	credit, err := creditItems(tables.Wallets, tables.WalletTransactions, c.Reward.Transaction)
	if err != nil {
		return nil, err
	}
	items = append(items, rewardItem, types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(tables.ReferralEntries),
		Item:                entry,
		ConditionExpression: aws.String("attribute_not_exists(entry_key)"),
	}})
	return append(items, credit...), nil
}

// referrerUpdate bumps the totals on the referrer's ledger item. The entry
// itself goes to the entry table so the item stays a fixed size.
func referrerUpdate(table string, rc *domain.RewardCredit) (types.TransactWriteItem, error) {
	earnings, err := attributevalue.Marshal(rc.Entry.Earnings)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal earnings: %w", err)
	}
	now, err := nowAttr(rc.Transaction.CreatedAt)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	paid := 0
	if rc.Entry.Status == domain.ReferralStatusPaid {
		paid = 1
	}
	return types.TransactWriteItem{Update: &types.Update{
		TableName: aws.String(table),
		Key:       strKey("user_id", rc.ReferrerID),
		UpdateExpression:    aws.String("SET #ua = :now ADD #tr :one, #pr :paid, #te :amt"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames: map[string]string{
			"#ua": fieldUpdatedAt,
			"#tr": fieldTotalReferrals,
			"#pr": fieldPaidReferrals,
			"#te": fieldTotalEarnings,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":  now,
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":paid": &types.AttributeValueMemberN{Value: fmt.Sprint(paid)},
			":amt":  earnings,
		},
	}}, nil
}
