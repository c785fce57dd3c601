package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrRunExists is returned when a run version was registered concurrently.
var ErrRunExists = errors.New("run version already registered")

// ErrRunNotFound is returned when no run is registered under a name.
var ErrRunNotFound = errors.New("run not found")

// DDBClient is the subset of the DynamoDB API the run log uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// NewDefaultDDBClient creates a DynamoDB client from the default AWS
// configuration chain.
func NewDefaultDDBClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// RunRecord describes one completed, archived simulation run.
type RunRecord struct {
	// Name identifies the simulation (partition key).
	Name string

	// Version is a monotonically increasing run version (sort key).
	Version int64

	// Seed is the record-generation seed of the run.
	Seed int64

	// DumpKey is the blob name of the archived dump.
	DumpKey string

	// Checksum is the hex checksum of the uncompressed dump text.
	Checksum string
}

// RunLog registers archived runs in DynamoDB with conditional writes, so
// concurrent archivers of the same simulation name cannot silently clobber
// each other's versions. The dump bytes themselves live in the blob store;
// the log only holds the pointer and provenance.
//
// Table schema:
//   - Partition key: name (string)
//   - Sort key: version (number)
type RunLog struct {
	client    DDBClient
	tableName string
}

// NewRunLog creates a run log on the given table.
func NewRunLog(client DDBClient, tableName string) *RunLog {
	return &RunLog{client: client, tableName: tableName}
}

// Register writes rec if its (name, version) pair is unused.
// Returns ErrRunExists when another writer claimed the version first.
func (l *RunLog) Register(ctx context.Context, rec RunRecord) error {
	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item: map[string]ddbtypes.AttributeValue{
			"name":     &ddbtypes.AttributeValueMemberS{Value: rec.Name},
			"version":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(rec.Version, 10)},
			"seed":     &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(rec.Seed, 10)},
			"dump_key": &ddbtypes.AttributeValueMemberS{Value: rec.DumpKey},
			"checksum": &ddbtypes.AttributeValueMemberS{Value: rec.Checksum},
		},
		ConditionExpression: aws.String("attribute_not_exists(#n) AND attribute_not_exists(version)"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s v%d", ErrRunExists, rec.Name, rec.Version)
		}
		return err
	}
	return nil
}

// Latest returns the highest-version run registered under name.
func (l *RunLog) Latest(ctx context.Context, name string) (RunRecord, error) {
	out, err := l.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(l.tableName),
		KeyConditionExpression: aws.String("#n = :name"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":name": &ddbtypes.AttributeValueMemberS{Value: name},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return RunRecord{}, err
	}
	if len(out.Items) == 0 {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, name)
	}
	return decodeRunItem(name, out.Items[0])
}

func decodeRunItem(name string, item map[string]ddbtypes.AttributeValue) (RunRecord, error) {
	rec := RunRecord{Name: name}

	if v, ok := item["version"].(*ddbtypes.AttributeValueMemberN); ok {
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return RunRecord{}, fmt.Errorf("malformed run version: %w", err)
		}
		rec.Version = n
	}
	if v, ok := item["seed"].(*ddbtypes.AttributeValueMemberN); ok {
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return RunRecord{}, fmt.Errorf("malformed run seed: %w", err)
		}
		rec.Seed = n
	}
	if v, ok := item["dump_key"].(*ddbtypes.AttributeValueMemberS); ok {
		rec.DumpKey = v.Value
	}
	if v, ok := item["checksum"].(*ddbtypes.AttributeValueMemberS); ok {
		rec.Checksum = v.Value
	}
	return rec, nil
}
