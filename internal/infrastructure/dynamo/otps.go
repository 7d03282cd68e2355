package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
)

// OTPRepo provides typed DynamoDB operations for the otp_verifications table.
// PK: otp_id. GSI phone_number-index: hash phone_number, range created_at —
// querying it with ScanIndexForward=false yields newest-first, which is the
// tie-break rule when duplicate codes exist.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, v *domain.OTPVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal otp verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// FindMatching returns the most recently issued record that is still eligible
// for consumption: exact phone+code+purpose match, unverified, unexpired, and
// under the attempt limit. Returns ErrNotFound when no such record exists —
// the caller must not learn which precondition failed.
func (r *OTPRepo) FindMatching(ctx context.Context, phone, code string, purpose domain.OTPPurpose, now time.Time, maxAttempts int) (*domain.OTPVerification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("phone_number-index"),
		KeyConditionExpression: aws.String("phone_number = :p"),
		FilterExpression:       aws.String("otp_code = :c AND #pu = :u AND is_verified = :f AND expires_at > :now AND attempts < :max"),
		ExpressionAttributeNames: map[string]string{
			"#pu": "purpose",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":   &types.AttributeValueMemberS{Value: phone},
			":c":   &types.AttributeValueMemberS{Value: code},
			":u":   &types.AttributeValueMemberS{Value: string(purpose)},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
			":max": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", maxAttempts)},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no eligible otp record: %w", domain.ErrNotFound)
	}
	var v domain.OTPVerification
	if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// IncrementAttempts bumps the attempts counter on the most recent record
// matching phone+code+purpose regardless of its other state, so stale,
// expired and already-consumed codes are penalized too. The increment is a
// single atomic ADD, never a read-modify-write. No-op when nothing matches.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, phone, code string, purpose domain.OTPPurpose) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("phone_number-index"),
		KeyConditionExpression: aws.String("phone_number = :p"),
		FilterExpression:       aws.String("otp_code = :c AND #pu = :u"),
		ExpressionAttributeNames: map[string]string{
			"#pu": "purpose",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: phone},
			":c": &types.AttributeValueMemberS{Value: code},
			":u": &types.AttributeValueMemberS{Value: string(purpose)},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return err
	}
	if len(out.Items) == 0 {
		return nil
	}
	idAttr, ok := out.Items[0]["otp_id"].(*types.AttributeValueMemberS)
	if !ok {
		return fmt.Errorf("otp record missing otp_id attribute")
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("otp_id", idAttr.Value),
		UpdateExpression: aws.String("ADD attempts :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	return err
}

// MarkVerified consumes the record: a single conditional update that flips
// is_verified false→true and stamps verified_at. The condition closes the
// check/use race — when another caller already won, DynamoDB rejects the
// write and this returns ErrConflict.
func (r *OTPRepo) MarkVerified(ctx context.Context, otpID string, at time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("otp_id", otpID),
		UpdateExpression:    aws.String("SET is_verified = :t, verified_at = :ts"),
		ConditionExpression: aws.String("is_verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":  &types.AttributeValueMemberBOOL{Value: true},
			":f":  &types.AttributeValueMemberBOOL{Value: false},
			":ts": &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("otp already consumed: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}
