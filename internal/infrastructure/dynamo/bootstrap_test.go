package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-referral-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableDefinitions_EveryKeyAttributeIsDeclared(t *testing.T) {
	tables := config.Load().DynamoTables
	defs := tableDefinitions(tables)
	require.Len(t, defs, 11)

	for _, d := range defs {
		declared := map[string]bool{}
		for _, a := range d.AttributeDefinitions {
			declared[aws.ToString(a.AttributeName)] = true
		}
		used := map[string]bool{}
		for _, k := range d.KeySchema {
			used[aws.ToString(k.AttributeName)] = true
		}
		for _, g := range d.GlobalSecondaryIndexes {
			for _, k := range g.KeySchema {
				used[aws.ToString(k.AttributeName)] = true
			}
		}
		// DynamoDB rejects attribute definitions that no key or index uses, and vice versa.
		assert.Equal(t, used, declared, aws.ToString(d.TableName))
	}
}

func TestGSI_OptionalSortKey(t *testing.T) {
	g := gsi("email-index", "email", "")
	assert.Len(t, g.KeySchema, 1)

	g = gsi("user_id-created_at-index", "user_id", "created_at")
	require.Len(t, g.KeySchema, 2)
	assert.Equal(t, "created_at", aws.ToString(g.KeySchema[1].AttributeName))
}

func TestTableDefinitions_OneOtpPerTarget(t *testing.T) {
	tables := config.Load().DynamoTables
	for _, d := range tableDefinitions(tables) {
		if aws.ToString(d.TableName) != tables.Otps {
			continue
		}
		require.Len(t, d.KeySchema, 1)
		assert.Equal(t, "target", aws.ToString(d.KeySchema[0].AttributeName))
		return
	}
	t.Fatal("otps table not defined")
}

func TestTableDefinitions_ReferralEntriesKeyedByReferrer(t *testing.T) {
	tables := config.Load().DynamoTables
	for _, d := range tableDefinitions(tables) {
		if aws.ToString(d.TableName) != tables.ReferralEntries {
			continue
		}
		require.Len(t, d.KeySchema, 2)
		assert.Equal(t, "referrer_id", aws.ToString(d.KeySchema[0].AttributeName))
		assert.Equal(t, "entry_key", aws.ToString(d.KeySchema[1].AttributeName))
		return
	}
	t.Fatal("referral_entries table not defined")
}
