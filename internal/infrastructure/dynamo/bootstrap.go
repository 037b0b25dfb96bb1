package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-referral-api/internal/config"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Tables that already exist are skipped.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	for _, in := range tableDefinitions(tables) {
		createTable(ctx, client, in)
	}
	enableTTL(ctx, client, tables.Otps, "purge_at")
	enableTTL(ctx, client, tables.Sessions, "expires_at")
}

func tableDefinitions(tables config.DynamoTables) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:   aws.String(tables.Users),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("user_id"), strAttr("email"), strAttr("referral_code"),
			},
			KeySchema: hashKey("user_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi("email-index", "email", ""),
				gsi("referral_code-index", "referral_code", ""),
			},
		},
		{
			TableName:            aws.String(tables.Otps),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("target")},
			KeySchema:            hashKey("target"),
		},
		{
			TableName:            aws.String(tables.Sessions),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("token_hash"), strAttr("user_id")},
			KeySchema:            hashKey("token_hash"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi("user_id-index", "user_id", ""),
			},
		},
		{
			TableName:            aws.String(tables.Referrals),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("user_id")},
			KeySchema:            hashKey("user_id"),
		},
		{
			TableName:   aws.String(tables.ReferralEntries),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("referrer_id"), strAttr("entry_key"),
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("referrer_id"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("entry_key"), KeyType: types.KeyTypeRange},
			},
		},
		{
			TableName:            aws.String(tables.Wallets),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("user_id")},
			KeySchema:            hashKey("user_id"),
		},
		{
			TableName:   aws.String(tables.WalletTransactions),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("txn_id"), strAttr("user_id"), strAttr("created_at"),
			},
			KeySchema: hashKey("txn_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi("user_id-created_at-index", "user_id", "created_at"),
			},
		},
		{
			TableName:            aws.String(tables.TopUps),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("topup_id")},
			KeySchema:            hashKey("topup_id"),
		},
		{
			TableName:            aws.String(tables.Products),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("product_id")},
			KeySchema:            hashKey("product_id"),
		},
		{
			TableName:   aws.String(tables.Orders),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				strAttr("order_id"), strAttr("user_id"), strAttr("created_at"),
			},
			KeySchema: hashKey("order_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi("user_id-created_at-index", "user_id", "created_at"),
			},
		},
		{
			TableName:            aws.String(tables.Settings),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{strAttr("setting_key")},
			KeySchema:            hashKey("setting_key"),
		},
	}
}

func strAttr(name string) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
}

func hashKey(name string) []types.KeySchemaElement {
	return []types.KeySchemaElement{{AttributeName: aws.String(name), KeyType: types.KeyTypeHash}}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
		return
	}
	slog.Info("created table", "table", *input.TableName)
}

func enableTTL(ctx context.Context, client *dynamodb.Client, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}
