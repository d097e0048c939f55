package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-phone-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newVerificationRepo(api *mockAPI) *VerificationRepo {
	r := NewVerificationRepo(api, "pending_verifications")
	r.now = func() time.Time { return fixedNow }
	return r
}

func itemFor(t *testing.T, v domain.PendingVerification) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return av
}

func TestVerificationRepo_PutStampsExpiry(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		var v domain.PendingVerification
		if err := attributevalue.UnmarshalMap(in.Item, &v); err != nil {
			return false
		}
		return v.PhoneNumber == "5550100" && v.ExpiresAt == fixedNow.Add(600*time.Second).Unix()
	})).Return(&dynamodb.PutItemOutput{}, nil)

	r := newVerificationRepo(api)
	err := r.Put(context.Background(), &domain.PendingVerification{PhoneNumber: "5550100", Code: "41523"}, 600*time.Second)
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestVerificationRepo_GetExpiredIsNotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{
		Item: itemFor(t, domain.PendingVerification{PhoneNumber: "5550100", Code: "41523", ExpiresAt: fixedNow.Unix() - 1}),
	}, nil)

	_, err := newVerificationRepo(api).Get(context.Background(), "5550100")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestVerificationRepo_GetMissing(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := newVerificationRepo(api).Get(context.Background(), "5550100")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestVerificationRepo_ConsumeMatch(t *testing.T) {
	api := &mockAPI{}
	old := domain.PendingVerification{PhoneNumber: "5550100", Code: "41523", ExpiresAt: fixedNow.Unix() + 60}
	api.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		c, ok := in.ExpressionAttributeValues[":c"].(*types.AttributeValueMemberS)
		return ok && c.Value == "41523" && in.ConditionExpression != nil
	})).Return(&dynamodb.DeleteItemOutput{Attributes: itemFor(t, old)}, nil)

	v, err := newVerificationRepo(api).Consume(context.Background(), "5550100", " 41523")
	require.NoError(t, err)
	assert.Equal(t, "5550100", v.PhoneNumber)
	api.AssertExpectations(t)
}

func TestVerificationRepo_ConsumeMismatch(t *testing.T) {
	api := &mockAPI{}
	old := domain.PendingVerification{PhoneNumber: "5550100", Code: "41523", ExpiresAt: fixedNow.Unix() + 60}
	api.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{Item: itemFor(t, old)})

	_, err := newVerificationRepo(api).Consume(context.Background(), "5550100", "11111")
	assert.ErrorIs(t, err, domain.ErrCodeMismatch)
}

func TestVerificationRepo_ConsumeMissing(t *testing.T) {
	api := &mockAPI{}
	api.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

	_, err := newVerificationRepo(api).Consume(context.Background(), "5550100", "41523")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestVerificationRepo_ConsumeExpired(t *testing.T) {
	api := &mockAPI{}
	old := domain.PendingVerification{PhoneNumber: "5550100", Code: "41523", ExpiresAt: fixedNow.Unix() - 5}
	api.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{Item: itemFor(t, old)})

	_, err := newVerificationRepo(api).Consume(context.Background(), "5550100", "41523")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestVerificationRepo_ConsumePropagatesOtherErrors(t *testing.T) {
	api := &mockAPI{}
	boom := errors.New("throttled")
	api.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := newVerificationRepo(api).Consume(context.Background(), "5550100", "41523")
	assert.ErrorIs(t, err, boom)
}
