package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
)

func TestAttemptInput_CapsAttemptsOnCurrentRecord(t *testing.T) {
	in := attemptInput("otps", "jane@example.com", "01HOTP", 5)

	assert.Equal(t, "jane@example.com", in.Key["target"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "ADD #a :one", aws.ToString(in.UpdateExpression))
	cond := aws.ToString(in.ConditionExpression)
	assert.Contains(t, cond, "otp_id = :id")
	assert.Contains(t, cond, "#u = :f")
	assert.Contains(t, cond, "#a < :max")
	assert.Equal(t, "01HOTP", in.ExpressionAttributeValues[":id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "5", in.ExpressionAttributeValues[":max"].(*types.AttributeValueMemberN).Value)
}

func TestConsumeOtpInput_RequiresSameGeneration(t *testing.T) {
	in := consumeOtpInput("otps", "jane@example.com", "01HOTP")

	assert.Len(t, in.Key, 1)
	assert.Equal(t, "otp_id = :id AND #u = :f", aws.ToString(in.ConditionExpression))
	assert.Equal(t, "01HOTP", in.ExpressionAttributeValues[":id"].(*types.AttributeValueMemberS).Value)
}
