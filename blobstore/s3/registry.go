package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/hfabric/publish"
)

// DDBClient is the subset of the DynamoDB API used by Registry.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Registry records published package versions in DynamoDB. A version tag is
// bound to one content digest on first registration; DynamoDB conditional
// writes make concurrent publishers agree on the winner.
//
// Table schema:
//   - Partition key: package (string)
//   - Sort key: version (string)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name hf-versions \
//	  --attribute-definitions AttributeName=package,AttributeType=S AttributeName=version,AttributeType=S \
//	  --key-schema AttributeName=package,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Registry struct {
	client DDBClient
	table  string
	now    func() time.Time
}

var _ publish.Registry = (*Registry)(nil)

// NewRegistry creates a registry on the given table.
func NewRegistry(client DDBClient, table string) *Registry {
	return &Registry{client: client, table: table, now: time.Now}
}

// Register binds version of name to digest. Registering the same digest
// again is a no-op; a different digest fails with publish.ErrVersionConflict.
func (r *Registry) Register(ctx context.Context, name, version, digest string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]types.AttributeValue{
			"package":       &types.AttributeValueMemberS{Value: name},
			"version":       &types.AttributeValueMemberS{Value: version},
			"digest":        &types.AttributeValueMemberS{Value: digest},
			"registered_at": &types.AttributeValueMemberS{Value: r.now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err == nil {
		return nil
	}
	var condErr *types.ConditionalCheckFailedException
	if !errors.As(err, &condErr) {
		return fmt.Errorf("register %s@%s: %w", name, version, err)
	}

	existing, ok, err := r.Lookup(ctx, name, version)
	if err != nil {
		return err
	}
	if ok && existing == digest {
		return nil
	}
	return fmt.Errorf("%w: %s@%s is registered with digest %s", publish.ErrVersionConflict, name, version, existing)
}

// Lookup returns the digest registered for a version.
func (r *Registry) Lookup(ctx context.Context, name, version string) (string, bool, error) {
	resp, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"package": &types.AttributeValueMemberS{Value: name},
			"version": &types.AttributeValueMemberS{Value: version},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("lookup %s@%s: %w", name, version, err)
	}
	if len(resp.Item) == 0 {
		return "", false, nil
	}
	d, ok := resp.Item["digest"].(*types.AttributeValueMemberS)
	if !ok {
		return "", false, errors.New("invalid digest attribute in DynamoDB")
	}
	return d.Value, true, nil
}

// Versions lists the registered versions of name in ascending sort-key order.
func (r *Registry) Versions(ctx context.Context, name string) ([]publish.Version, error) {
	var out []publish.Version
	var start map[string]types.AttributeValue
	for {
		resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			KeyConditionExpression: aws.String("#p = :p"),
			ExpressionAttributeNames: map[string]string{
				"#p": "package",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":p": &types.AttributeValueMemberS{Value: name},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("list versions of %s: %w", name, err)
		}
		for _, item := range resp.Items {
			v := publish.Version{Name: name, Version: stringAttr(item, "version"), Digest: stringAttr(item, "digest")}
			if ts, err := time.Parse(time.RFC3339, stringAttr(item, "registered_at")); err == nil {
				v.RegisteredAt = ts
			}
			out = append(out, v)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			return out, nil
		}
		start = resp.LastEvaluatedKey
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
