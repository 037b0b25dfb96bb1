package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-referral-api/internal/domain"
)

// OtpRepo manages one-time codes. PK: target. A target holds at most one
// record, so a new code replaces the previous one in a single write.
type OtpRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOtpRepo(client *dynamodb.Client, tableName string) *OtpRepo {
	return &OtpRepo{client: client, tableName: tableName}
}

// Put stores o as the only record for its target, replacing any earlier code.
func (r *OtpRepo) Put(ctx context.Context, o *domain.OtpRecord) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OtpRepo) Get(ctx context.Context, target string) (*domain.OtpRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("target", target),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var o domain.OtpRecord
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// RecordAttempt spends one attempt on record otpID. It fails with ErrOtpLocked
// once limit attempts are spent, and with ErrInvalidOtp when the record was
// consumed or replaced meanwhile.
func (r *OtpRepo) RecordAttempt(ctx context.Context, target, otpID string, limit int) error {
	_, err := r.client.UpdateItem(ctx, attemptInput(r.tableName, target, otpID, limit))
	if !isConditionFailed(err) {
		return err
	}
	cur, getErr := r.Get(ctx, target)
	if getErr == nil && cur.OtpID == otpID && !cur.Used && cur.Attempts >= limit {
		return domain.ErrOtpLocked
	}
	return domain.ErrInvalidOtp
}

func attemptInput(table, target, otpID string, limit int) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:        aws.String(table),
		Key:              strKey("target", target),
		UpdateExpression: aws.String("ADD #a :one"),
		ConditionExpression: aws.String(
			"otp_id = :id AND #u = :f AND (attribute_not_exists(#a) OR #a < :max)"),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldAttempts,
			"#u": fieldUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":id":  &types.AttributeValueMemberS{Value: otpID},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":max": &types.AttributeValueMemberN{Value: strconv.Itoa(limit)},
		},
	}
}

// MarkUsed consumes the record. A second call, or a call for a record that a
// newer code has replaced, fails with ErrInvalidOtp.
func (r *OtpRepo) MarkUsed(ctx context.Context, target, otpID string) error {
	_, err := r.client.UpdateItem(ctx, consumeOtpInput(r.tableName, target, otpID))
	if isConditionFailed(err) {
		return domain.ErrInvalidOtp
	}
	return err
}

func consumeOtpInput(table, target, otpID string) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(table),
		Key:                 strKey("target", target),
		UpdateExpression:    aws.String("SET #u = :t"),
		ConditionExpression: aws.String("otp_id = :id AND #u = :f"),
		ExpressionAttributeNames: map[string]string{
			"#u": fieldUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: otpID},
			":t":  &types.AttributeValueMemberBOOL{Value: true},
			":f":  &types.AttributeValueMemberBOOL{Value: false},
		},
	}
}
