package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrKey       = "kv_key"
	attrExpiresAt = "expires_at"
)

// itemAPI is the subset of *dynamodb.Client the key-value repo needs.
type itemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// kvItem is one row of the key-value table.
// PK: kv_key. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type kvItem struct {
	Key       string    `dynamodbav:"kv_key"`
	Value     []byte    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	ExpiresAt int64     `dynamodbav:"expires_at,omitempty"`
}

// KVRepo stores opaque blobs in a DynamoDB table, satisfying the banner
// dismissal store contract.
type KVRepo struct {
	client    itemAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewKVRepo returns a repo over tableName. A zero ttl writes rows without expiry.
func NewKVRepo(client itemAPI, tableName string, ttl time.Duration) *KVRepo {
	return &KVRepo{client: client, tableName: tableName, ttl: ttl, now: time.Now}
}

func (r *KVRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrKey, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("dynamo get %s: %w", key, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	var item kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("unmarshal kv item: %w", err)
	}
	// TTL deletion is lazy on DynamoDB's side; treat expired rows as absent.
	if item.ExpiresAt != 0 && item.ExpiresAt < r.now().Unix() {
		return nil, false, nil
	}
	return item.Value, true, nil
}

func (r *KVRepo) Set(ctx context.Context, key string, value []byte) error {
	now := r.now().UTC()
	item := kvItem{Key: key, Value: value, UpdatedAt: now}
	if r.ttl > 0 {
		item.ExpiresAt = now.Add(r.ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal kv item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamo put %s: %w", key, err)
	}
	return nil
}

// Ping checks that the table exists and is ACTIVE; it backs the readiness probe.
func (r *KVRepo) Ping(ctx context.Context) error {
	out, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", r.tableName, err)
	}
	if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
		status := "unknown"
		if out.Table != nil {
			status = string(out.Table.TableStatus)
		}
		return fmt.Errorf("table %s is %s", r.tableName, status)
	}
	return nil
}
