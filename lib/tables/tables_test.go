// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package tables

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chinthakat/trading-bot-aws/lib/clock"
	"github.com/chinthakat/trading-bot-aws/lib/config"
)

type fakeDynamo struct {
	DynamoAPI

	listTables     func(*dynamodb.ListTablesInput) (*dynamodb.ListTablesOutput, error)
	createTable    func(*dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error)
	deleteTable    func(*dynamodb.DeleteTableInput) (*dynamodb.DeleteTableOutput, error)
	describeTable  func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)
	scan           func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	batchWriteItem func(*dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error)
}

func (f *fakeDynamo) ListTables(_ context.Context, params *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	return f.listTables(params)
}

func (f *fakeDynamo) CreateTable(_ context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	return f.createTable(params)
}

func (f *fakeDynamo) DeleteTable(_ context.Context, params *dynamodb.DeleteTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error) {
	return f.deleteTable(params)
}

func (f *fakeDynamo) DescribeTable(_ context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return f.describeTable(params)
}

func (f *fakeDynamo) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return f.scan(params)
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, params *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return f.batchWriteItem(params)
}

// activeTable satisfies the table-exists waiter immediately.
func activeTable(params *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{
		Table: &dbtypes.TableDescription{
			TableName:   params.TableName,
			TableStatus: dbtypes.TableStatusActive,
		},
	}, nil
}

// missingTable satisfies the table-not-exists waiter immediately.
func missingTable(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
	return nil, &dbtypes.ResourceNotFoundException{}
}

func TestCreateInput(t *testing.T) {
	names := config.Default().AWS.Tables

	t.Run("on demand with sort key", func(t *testing.T) {
		input := CreateInput(PricesDefinition(names.Prices))
		if input.BillingMode != dbtypes.BillingModePayPerRequest {
			t.Errorf("billing mode: got %v", input.BillingMode)
		}
		if input.ProvisionedThroughput != nil {
			t.Error("on-demand table must not set provisioned throughput")
		}
		if len(input.KeySchema) != 2 {
			t.Fatalf("key schema: got %d elements, want 2", len(input.KeySchema))
		}
		if aws.ToString(input.KeySchema[0].AttributeName) != "symbol" || input.KeySchema[0].KeyType != dbtypes.KeyTypeHash {
			t.Errorf("partition key: got %v", input.KeySchema[0])
		}
		if aws.ToString(input.KeySchema[1].AttributeName) != "timestamp" || input.KeySchema[1].KeyType != dbtypes.KeyTypeRange {
			t.Errorf("sort key: got %v", input.KeySchema[1])
		}
		if input.AttributeDefinitions[1].AttributeType != dbtypes.ScalarAttributeTypeN {
			t.Errorf("timestamp type: got %v", input.AttributeDefinitions[1].AttributeType)
		}
	})

	t.Run("provisioned audit table", func(t *testing.T) {
		input := CreateInput(AuditDefinitions(names)[0])
		if input.ProvisionedThroughput == nil {
			t.Fatal("audit table must be provisioned")
		}
		if aws.ToInt64(input.ProvisionedThroughput.ReadCapacityUnits) != 5 ||
			aws.ToInt64(input.ProvisionedThroughput.WriteCapacityUnits) != 5 {
			t.Errorf("throughput: got %+v", input.ProvisionedThroughput)
		}
		if input.BillingMode != "" {
			t.Errorf("billing mode on provisioned table: got %v", input.BillingMode)
		}
	})
}

func TestCoreDefinitions(t *testing.T) {
	definitions := CoreDefinitions(config.Default().AWS.Tables)
	if len(definitions) != 4 {
		t.Fatalf("definitions: got %d, want 4", len(definitions))
	}

	byKey := make(map[string]Definition)
	for _, definition := range definitions {
		byKey[definition.Partition.Name] = definition
	}
	if _, ok := byKey["trade_id"]; !ok {
		t.Error("trades definition missing")
	}
	stats := byKey["stat_type"]
	if stats.Sort == nil || stats.Sort.Name != "algo" {
		t.Errorf("stats sort key: got %+v", stats.Sort)
	}
	prices := byKey["symbol"]
	if prices.Sort == nil || prices.Sort.Name != "timestamp" || prices.Sort.Type != dbtypes.ScalarAttributeTypeN {
		t.Errorf("prices sort key: got %+v", prices.Sort)
	}
}

func TestCreateAll_SkipsExisting(t *testing.T) {
	var created []string
	admin := NewAdmin(&fakeDynamo{
		listTables: func(*dynamodb.ListTablesInput) (*dynamodb.ListTablesOutput, error) {
			return &dynamodb.ListTablesOutput{
				TableNames: []string{"TradingBot_Trades", "TradingBot_Signals"},
			}, nil
		},
		createTable: func(input *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
			created = append(created, aws.ToString(input.TableName))
			return &dynamodb.CreateTableOutput{}, nil
		},
		describeTable: activeTable,
	}, nil, nil)

	definitions := CoreDefinitions(config.Default().AWS.Tables)
	if err := admin.CreateAll(context.Background(), definitions, time.Minute); err != nil {
		t.Fatalf("CreateAll() error: %v", err)
	}

	want := []string{"TradingBot_Stats", "TradingBot_Prices"}
	if len(created) != len(want) {
		t.Fatalf("created: got %v, want %v", created, want)
	}
	for index, name := range want {
		if created[index] != name {
			t.Errorf("created[%d]: got %q, want %q", index, created[index], name)
		}
	}
}

func TestCreate_ToleratesExisting(t *testing.T) {
	admin := NewAdmin(&fakeDynamo{
		createTable: func(*dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
			return nil, &dbtypes.ResourceInUseException{}
		},
	}, nil, nil)

	definition := PricesDefinition("TradingBot_Prices")
	if err := admin.Create(context.Background(), definition, time.Minute); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
}

func TestDelete_ToleratesMissing(t *testing.T) {
	admin := NewAdmin(&fakeDynamo{
		deleteTable: func(*dynamodb.DeleteTableInput) (*dynamodb.DeleteTableOutput, error) {
			return nil, &dbtypes.ResourceNotFoundException{}
		},
	}, nil, nil)

	if err := admin.Delete(context.Background(), "TradingBot_Prices", time.Minute); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}

func TestRecreate(t *testing.T) {
	var calls []string
	admin := NewAdmin(&fakeDynamo{
		deleteTable: func(input *dynamodb.DeleteTableInput) (*dynamodb.DeleteTableOutput, error) {
			calls = append(calls, "delete "+aws.ToString(input.TableName))
			return &dynamodb.DeleteTableOutput{}, nil
		},
		createTable: func(input *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
			calls = append(calls, "create "+aws.ToString(input.TableName))
			return &dynamodb.CreateTableOutput{}, nil
		},
		describeTable: func(params *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			// The not-exists waiter runs before the create call.
			if len(calls) < 2 {
				return missingTable(params)
			}
			return activeTable(params)
		},
	}, nil, nil)

	definition := PricesDefinition("TradingBot_Prices")
	if err := admin.Recreate(context.Background(), definition, time.Minute); err != nil {
		t.Fatalf("Recreate() error: %v", err)
	}

	want := []string{"delete TradingBot_Prices", "create TradingBot_Prices"}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Errorf("calls: got %v, want %v", calls, want)
	}
}

func TestClear_PaginatesAndBatches(t *testing.T) {
	// 30 items across two scan pages forces both scan pagination and a
	// split into batches of at most 25 delete requests.
	makeKeys := func(start, count int) []map[string]dbtypes.AttributeValue {
		keys := make([]map[string]dbtypes.AttributeValue, 0, count)
		for index := 0; index < count; index++ {
			keys = append(keys, map[string]dbtypes.AttributeValue{
				"symbol":    &dbtypes.AttributeValueMemberS{Value: "BTCUSDT"},
				"timestamp": &dbtypes.AttributeValueMemberN{Value: strconv.Itoa(start + index)},
			})
		}
		return keys
	}

	scans := 0
	var batchSizes []int
	admin := NewAdmin(&fakeDynamo{
		scan: func(input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			if aws.ToString(input.ProjectionExpression) != "#pk, #sk" {
				t.Errorf("projection: got %q", aws.ToString(input.ProjectionExpression))
			}
			if input.ExpressionAttributeNames["#sk"] != "timestamp" {
				t.Errorf("attribute names: got %v", input.ExpressionAttributeNames)
			}
			scans++
			if scans == 1 {
				return &dynamodb.ScanOutput{
					Items:            makeKeys(0, 26),
					LastEvaluatedKey: makeKeys(25, 1)[0],
				}, nil
			}
			return &dynamodb.ScanOutput{Items: makeKeys(26, 4)}, nil
		},
		batchWriteItem: func(input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
			batchSizes = append(batchSizes, len(input.RequestItems["TradingBot_Prices"]))
			return &dynamodb.BatchWriteItemOutput{}, nil
		},
	}, nil, nil)

	deleted, err := admin.Clear(context.Background(), PricesDefinition("TradingBot_Prices"))
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if deleted != 30 {
		t.Errorf("deleted: got %d, want 30", deleted)
	}
	want := []int{25, 1, 4}
	if len(batchSizes) != len(want) {
		t.Fatalf("batch sizes: got %v, want %v", batchSizes, want)
	}
	for index := range want {
		if batchSizes[index] != want[index] {
			t.Errorf("batch %d: got %d, want %d", index, batchSizes[index], want[index])
		}
	}
}

func TestClear_ResubmitsUnprocessedDeletes(t *testing.T) {
	// Throttled deletes come back in UnprocessedItems with a nil
	// error. They must be sent again, and only accepted deletes count.
	keys := []map[string]dbtypes.AttributeValue{{
		"symbol":    &dbtypes.AttributeValueMemberS{Value: "BTCUSDT"},
		"timestamp": &dbtypes.AttributeValueMemberN{Value: "1756300000123"},
	}}

	clk := clock.NewFake(time.Unix(0, 0))
	batches := 0
	admin := NewAdmin(&fakeDynamo{
		scan: func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			return &dynamodb.ScanOutput{Items: keys}, nil
		},
		batchWriteItem: func(input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
			batches++
			if batches == 1 {
				return &dynamodb.BatchWriteItemOutput{
					UnprocessedItems: map[string][]dbtypes.WriteRequest{
						"TradingBot_Prices": input.RequestItems["TradingBot_Prices"],
					},
				}, nil
			}
			return &dynamodb.BatchWriteItemOutput{}, nil
		},
	}, clk, nil)

	deleted, err := admin.Clear(context.Background(), PricesDefinition("TradingBot_Prices"))
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if batches != 2 {
		t.Errorf("batch calls: got %d, want 2", batches)
	}
	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}
	if slept := clk.Slept(); len(slept) != 1 || slept[0] != 100*time.Millisecond {
		t.Errorf("backoff sleeps: got %v", slept)
	}
}

func TestClear_GivesUpOnPersistentUnprocessed(t *testing.T) {
	keys := []map[string]dbtypes.AttributeValue{{
		"symbol":    &dbtypes.AttributeValueMemberS{Value: "BTCUSDT"},
		"timestamp": &dbtypes.AttributeValueMemberN{Value: "1756300000123"},
	}}

	clk := clock.NewFake(time.Unix(0, 0))
	batches := 0
	admin := NewAdmin(&fakeDynamo{
		scan: func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			return &dynamodb.ScanOutput{Items: keys}, nil
		},
		batchWriteItem: func(input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
			batches++
			return &dynamodb.BatchWriteItemOutput{
				UnprocessedItems: map[string][]dbtypes.WriteRequest{
					"TradingBot_Prices": input.RequestItems["TradingBot_Prices"],
				},
			}, nil
		},
	}, clk, nil)

	deleted, err := admin.Clear(context.Background(), PricesDefinition("TradingBot_Prices"))
	if err == nil {
		t.Fatal("Clear() succeeded despite permanently unprocessed deletes")
	}
	if deleted != 0 {
		t.Errorf("deleted: got %d, want 0", deleted)
	}
	if batches != unprocessedRetryLimit {
		t.Errorf("batch calls: got %d, want %d", batches, unprocessedRetryLimit)
	}
	// Each resubmission doubles the pause: 100ms, 200ms, ...
	slept := clk.Slept()
	if len(slept) != unprocessedRetryLimit-1 {
		t.Fatalf("backoff sleeps: got %d, want %d", len(slept), unprocessedRetryLimit-1)
	}
	for index, pause := range slept {
		if want := unprocessedRetryBackoff << index; pause != want {
			t.Errorf("sleep %d: got %v, want %v", index, pause, want)
		}
	}
}

func TestDecodeItem(t *testing.T) {
	item := map[string]dbtypes.AttributeValue{
		"symbol":    &dbtypes.AttributeValueMemberS{Value: "BTCUSDT"},
		"timestamp": &dbtypes.AttributeValueMemberN{Value: "1756300000123"},
		"filled":    &dbtypes.AttributeValueMemberBOOL{Value: true},
		"note":      &dbtypes.AttributeValueMemberNULL{Value: true},
		"details": &dbtypes.AttributeValueMemberM{Value: map[string]dbtypes.AttributeValue{
			"price": &dbtypes.AttributeValueMemberN{Value: "64250.50"},
		}},
		"fills": &dbtypes.AttributeValueMemberL{Value: []dbtypes.AttributeValue{
			&dbtypes.AttributeValueMemberN{Value: "0.25"},
		}},
	}

	decoded := DecodeItem(item)

	if decoded["symbol"] != "BTCUSDT" {
		t.Errorf("symbol: got %v", decoded["symbol"])
	}
	// Numbers must survive as strings so precision is preserved.
	if decoded["timestamp"] != "1756300000123" {
		t.Errorf("timestamp: got %v (%T)", decoded["timestamp"], decoded["timestamp"])
	}
	if decoded["filled"] != true {
		t.Errorf("filled: got %v", decoded["filled"])
	}
	if decoded["note"] != nil {
		t.Errorf("note: got %v", decoded["note"])
	}
	details, ok := decoded["details"].(map[string]any)
	if !ok || details["price"] != "64250.50" {
		t.Errorf("details: got %v", decoded["details"])
	}
	fills, ok := decoded["fills"].([]any)
	if !ok || len(fills) != 1 || fills[0] != "0.25" {
		t.Errorf("fills: got %v", decoded["fills"])
	}
}
