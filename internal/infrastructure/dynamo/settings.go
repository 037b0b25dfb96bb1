package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-referral-api/internal/domain"
)

type SettingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSettingRepo(client *dynamodb.Client, tableName string) *SettingRepo {
	return &SettingRepo{client: client, tableName: tableName}
}

func (r *SettingRepo) Put(ctx context.Context, s *domain.Setting) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal setting: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SettingRepo) Get(ctx context.Context, key string) (*domain.Setting, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("setting_key", key),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("setting %q not found: %w", key, domain.ErrNotFound)
	}
	var s domain.Setting
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every setting ordered by key. The table is small.
func (r *SettingRepo) List(ctx context.Context) ([]domain.Setting, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	settings := []domain.Setting{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &settings); err != nil {
		return nil, err
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}
