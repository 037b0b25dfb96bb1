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

// entryKeyLayout is fixed width so entry keys sort by join time.
const entryKeyLayout = "2006-01-02T15:04:05.000000000Z"

// referralEntryItem is one row of the referral_entries table.
// PK: referrer_id, SK: entry_key (join time + referred user id).
type referralEntryItem struct {
	ReferrerID string       `dynamodbav:"referrer_id"`
	EntryKey   string       `dynamodbav:"entry_key"`
	UserID     string       `dynamodbav:"user_id"`
	Name       string       `dynamodbav:"name"`
	Avatar     string       `dynamodbav:"avatar"`
	JoinDate   time.Time    `dynamodbav:"join_date"`
	Status     string       `dynamodbav:"status"`
	Earnings   domain.Money `dynamodbav:"earnings"`
}

func newReferralEntryItem(rc *domain.RewardCredit) referralEntryItem {
	e := rc.Entry
	return referralEntryItem{
		ReferrerID: rc.ReferrerID,
		EntryKey:   e.JoinDate.UTC().Format(entryKeyLayout) + "#" + rc.ReferredID,
		UserID:     rc.ReferredID,
		Name:       e.Name,
		Avatar:     e.Avatar,
		JoinDate:   e.JoinDate,
		Status:     e.Status,
		Earnings:   e.Earnings,
	}
}

func (it referralEntryItem) entry() domain.ReferralEntry {
	return domain.ReferralEntry{
		Name:     it.Name,
		Avatar:   it.Avatar,
		JoinDate: it.JoinDate,
		Status:   it.Status,
		Earnings: it.Earnings,
	}
}

// ReferralRepo reads referral ledgers. Writes happen inside the
// registration transaction, see RegistrationRepo.
type ReferralRepo struct {
	client       *dynamodb.Client
	tableName    string
	entriesTable string
}

func NewReferralRepo(client *dynamodb.Client, tableName, entriesTable string) *ReferralRepo {
	return &ReferralRepo{client: client, tableName: tableName, entriesTable: entriesTable}
}

// Get returns the ledger totals together with every entry, oldest first.
func (r *ReferralRepo) Get(ctx context.Context, userID string) (*domain.Referral, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("user_id", userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("referral not found: %w", domain.ErrNotFound)
	}
	var ref domain.Referral
	if err := attributevalue.UnmarshalMap(out.Item, &ref); err != nil {
		return nil, err
	}
	ref.Referrals, err = r.entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *ReferralRepo) entries(ctx context.Context, referrerID string) ([]domain.ReferralEntry, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.entriesTable),
		KeyConditionExpression:    aws.String("referrer_id = :r"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":r": &types.AttributeValueMemberS{Value: referrerID}},
		ScanIndexForward:          aws.Bool(true),
	})
	entries := []domain.ReferralEntry{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []referralEntryItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			entries = append(entries, it.entry())
		}
	}
	return entries, nil
}
