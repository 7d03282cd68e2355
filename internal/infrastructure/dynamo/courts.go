package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
)

// CourtRepo provides typed DynamoDB operations for the courts table.
type CourtRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCourtRepo(client *dynamodb.Client, tableName string) *CourtRepo {
	return &CourtRepo{client: client, tableName: tableName}
}

func (r *CourtRepo) Put(ctx context.Context, c *domain.Court) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal court: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CourtRepo) Get(ctx context.Context, courtID string) (*domain.Court, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("court_id", courtID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("court not found: %w", domain.ErrNotFound)
	}
	var c domain.Court
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourtRepo) ListByFacility(ctx context.Context, facilityID string) ([]domain.Court, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("facility_id-index"),
		KeyConditionExpression: aws.String("facility_id = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":f": &types.AttributeValueMemberS{Value: facilityID},
		},
	})
	if err != nil {
		return nil, err
	}
	var cs []domain.Court
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *CourtRepo) Update(ctx context.Context, courtID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withUpdatedAt(updates))
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("court_id", courtID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
