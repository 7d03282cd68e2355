package dynamo

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
)

// FacilityRepo provides typed DynamoDB operations for the facilities table.
type FacilityRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFacilityRepo(client *dynamodb.Client, tableName string) *FacilityRepo {
	return &FacilityRepo{client: client, tableName: tableName}
}

func (r *FacilityRepo) Put(ctx context.Context, f *domain.Facility) error {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return fmt.Errorf("marshal facility: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *FacilityRepo) Get(ctx context.Context, facilityID string) (*domain.Facility, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("facility_id", facilityID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("facility not found: %w", domain.ErrNotFound)
	}
	var f domain.Facility
	if err := attributevalue.UnmarshalMap(out.Item, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FacilityRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Facility, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("owner_id-index"),
		KeyConditionExpression: aws.String("owner_id = :o"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":o": &types.AttributeValueMemberS{Value: ownerID},
		},
	})
	if err != nil {
		return nil, err
	}
	var fs []domain.Facility
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// ScanPage returns a page of enabled, approved facilities.
// cursor is a base64-encoded facility_id used as ExclusiveStartKey.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *FacilityRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Facility, string, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("enable = :t AND #st = :approved"),
		ExpressionAttributeNames: map[string]string{
			"#st": fieldStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":        &types.AttributeValueMemberBOOL{Value: true},
			":approved": &types.AttributeValueMemberS{Value: domain.FacilityApproved},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		facilityID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("facility_id", facilityID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var fs []domain.Facility
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &fs); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["facility_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return fs, nextCursor, nil
}

func (r *FacilityRepo) Update(ctx context.Context, facilityID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withUpdatedAt(updates))
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("facility_id", facilityID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *FacilityRepo) SoftDelete(ctx context.Context, facilityID string) error {
	now := time.Now().UTC()
	return r.Update(ctx, facilityID, map[string]interface{}{
		fieldEnable:    false,
		fieldDeletedAt: now.Format(time.RFC3339),
	})
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
