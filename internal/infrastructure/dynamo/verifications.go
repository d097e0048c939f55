package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-phone-auth/internal/domain"
	"github.com/go-phone-auth/internal/pkg/otp"
)

// VerificationRepo stores pending verifications keyed by phone number.
// PK: phone_number. DynamoDB TTL on expires_at removes stale items, but TTL
// deletion lags by up to days, so every read also checks expires_at.
type VerificationRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewVerificationRepo(client API, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.PendingVerification, ttl time.Duration) error {
	item := *v
	item.ExpiresAt = r.now().Add(ttl).Unix()
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

func (r *VerificationRepo) Get(ctx context.Context, phone string) (*domain.PendingVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldPhoneNumber, phone),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return r.live(out.Item)
}

func (r *VerificationRepo) Delete(ctx context.Context, phone string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldPhoneNumber, phone),
	})
	return err
}

// Consume deletes the item only if the code matches and it has not expired.
// When the condition fails, the old item returned with the exception tells
// a mismatch apart from a missing or expired entry.
func (r *VerificationRepo) Consume(ctx context.Context, phone, code string) (*domain.PendingVerification, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldPhoneNumber, phone),
		ConditionExpression: aws.String("attribute_exists(#p) AND #c = :c AND #x > :now"),
		ExpressionAttributeNames: map[string]string{
			"#p": fieldPhoneNumber,
			"#c": fieldCode,
			"#x": fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: otp.Normalize(code)},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(r.now().Unix(), 10)},
		},
		ReturnValues:                        types.ReturnValueAllOld,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if !errors.As(err, &ccf) {
			return nil, err
		}
		if _, err := r.live(ccf.Item); err != nil {
			return nil, err
		}
		return nil, domain.ErrCodeMismatch
	}
	var v domain.PendingVerification
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// live decodes item and reports ErrCodeNotFound when it is absent or expired.
func (r *VerificationRepo) live(item map[string]types.AttributeValue) (*domain.PendingVerification, error) {
	if len(item) == 0 {
		return nil, domain.ErrCodeNotFound
	}
	var v domain.PendingVerification
	if err := attributevalue.UnmarshalMap(item, &v); err != nil {
		return nil, err
	}
	if v.Expired(r.now()) {
		return nil, domain.ErrCodeNotFound
	}
	return &v, nil
}
