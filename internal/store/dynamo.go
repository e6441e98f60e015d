package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/kyozo/waitlist/internal/domain"
)

const dynamoPartition = "WAITLIST"

// DynamoAPI is the subset of the DynamoDB client the repository uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoRepository stores all submissions under one partition. Sort keys are
// UUIDv7 ids, so a descending query returns newest first.
type DynamoRepository struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

// NewDynamoRepository creates a DynamoDB-backed repository.
func NewDynamoRepository(client DynamoAPI, tableName string) *DynamoRepository {
	return &DynamoRepository{
		client:    client,
		tableName: tableName,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewDynamoRepositoryFromConfig builds the SDK client from an aws.Config.
func NewDynamoRepositoryFromConfig(cfg aws.Config, tableName string) *DynamoRepository {
	return NewDynamoRepository(dynamodb.NewFromConfig(cfg), tableName)
}

// dynamoItem represents a submission stored in DynamoDB
type dynamoItem struct {
	PK                  string   `dynamodbav:"PK"`
	SK                  string   `dynamodbav:"SK"`
	UserID              string   `dynamodbav:"UserID"`
	Timestamp           string   `dynamodbav:"Timestamp"`
	FirstName           string   `dynamodbav:"FirstName"`
	LastName            string   `dynamodbav:"LastName"`
	Email               string   `dynamodbav:"Email"`
	Phone               string   `dynamodbav:"Phone"`
	Location            string   `dynamodbav:"Location"`
	RoleTypes           []string `dynamodbav:"RoleTypes"`
	CreativeWork        string   `dynamodbav:"CreativeWork"`
	BetaTesting         string   `dynamodbav:"BetaTesting"`
	ResonanceLevel      string   `dynamodbav:"ResonanceLevel"`
	ResonanceReasons    []string `dynamodbav:"ResonanceReasons"`
	CommunitySelections []string `dynamodbav:"CommunitySelections"`
	SegmentAnswers      string   `dynamodbav:"SegmentAnswers,omitempty"`
}

func toDynamoItem(sub *domain.Submission) (dynamoItem, error) {
	item := dynamoItem{
		PK:                  dynamoPartition,
		SK:                  sub.ID,
		UserID:              sub.UserID,
		Timestamp:           sub.Timestamp.Format(time.RFC3339Nano),
		FirstName:           sub.FirstName,
		LastName:            sub.LastName,
		Email:               sub.Email,
		Phone:               sub.Phone,
		Location:            sub.Location,
		RoleTypes:           sub.RoleTypes,
		CreativeWork:        sub.CreativeWork,
		BetaTesting:         sub.BetaTesting,
		ResonanceLevel:      sub.ResonanceLevel,
		ResonanceReasons:    sub.ResonanceReasons,
		CommunitySelections: sub.CommunitySelections,
	}
	if len(sub.SegmentAnswers) > 0 {
		raw, err := json.Marshal(sub.SegmentAnswers)
		if err != nil {
			return dynamoItem{}, fmt.Errorf("marshaling segment answers: %w", err)
		}
		item.SegmentAnswers = string(raw)
	}
	return item, nil
}

func (it dynamoItem) submission() (domain.Submission, error) {
	ts, err := time.Parse(time.RFC3339Nano, it.Timestamp)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("parsing timestamp of %s: %w", it.SK, err)
	}
	sub := domain.Submission{
		ID:                  it.SK,
		UserID:              it.UserID,
		Timestamp:           ts,
		FirstName:           it.FirstName,
		LastName:            it.LastName,
		Email:               it.Email,
		Phone:               it.Phone,
		Location:            it.Location,
		RoleTypes:           it.RoleTypes,
		CreativeWork:        it.CreativeWork,
		BetaTesting:         it.BetaTesting,
		ResonanceLevel:      it.ResonanceLevel,
		ResonanceReasons:    it.ResonanceReasons,
		CommunitySelections: it.CommunitySelections,
	}
	if it.SegmentAnswers != "" {
		if err := json.Unmarshal([]byte(it.SegmentAnswers), &sub.SegmentAnswers); err != nil {
			return domain.Submission{}, fmt.Errorf("parsing segment answers of %s: %w", it.SK, err)
		}
	}
	return sub, nil
}

func (r *DynamoRepository) Create(ctx context.Context, sub *domain.Submission) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	stored := sub.Clone()
	stored.ID = id.String()
	stored.Timestamp = r.now()

	item, err := toDynamoItem(stored)
	if err != nil {
		return "", err
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("marshaling item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	})
	if err != nil {
		return "", fmt.Errorf("putting item to DynamoDB: %w", err)
	}

	sub.ID, sub.Timestamp = stored.ID, stored.Timestamp
	return stored.ID, nil
}

func (r *DynamoRepository) List(ctx context.Context) ([]domain.Submission, error) {
	var (
		out   []domain.Submission
		start map[string]types.AttributeValue
	)
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: dynamoPartition},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("querying DynamoDB: %w", err)
		}
		for _, raw := range result.Items {
			var item dynamoItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshaling item: %w", err)
			}
			sub, err := item.submission()
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
		}
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		start = result.LastEvaluatedKey
	}
	return out, nil
}

func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: dynamoPartition},
			"SK": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(SK)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting item from DynamoDB: %w", err)
	}
	return nil
}

func (r *DynamoRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	return err
}
