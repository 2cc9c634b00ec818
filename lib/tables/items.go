// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package tables

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// batchWriteLimit is the BatchWriteItem request cap.
const batchWriteLimit = 25

// Resubmission pacing for throttled batch writes. Throttled requests
// come back in UnprocessedItems, not as an error, and must be sent
// again.
const (
	unprocessedRetryLimit   = 8
	unprocessedRetryBackoff = 100 * time.Millisecond
)

// Inspect scans up to limit items from the table and returns them
// decoded for display.
func (a *Admin) Inspect(ctx context.Context, name string, limit int32) ([]map[string]any, error) {
	output, err := a.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(name),
		Limit:     aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", name, err)
	}

	items := make([]map[string]any, 0, len(output.Items))
	for _, item := range output.Items {
		items = append(items, DecodeItem(item))
	}
	return items, nil
}

// ScanAll scans the whole table, following pagination, and returns the
// decoded items.
func (a *Admin) ScanAll(ctx context.Context, name string) ([]map[string]any, error) {
	var items []map[string]any
	var startKey map[string]dbtypes.AttributeValue
	for {
		output, err := a.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(name),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", name, err)
		}
		for _, item := range output.Items {
			items = append(items, DecodeItem(item))
		}
		if output.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = output.LastEvaluatedKey
	}
}

// Clear deletes every item from the table by scanning key projections
// and issuing batched deletes. Returns the number of items deleted.
// Key attributes are aliased in the projection because "timestamp" is
// a DynamoDB reserved word.
func (a *Admin) Clear(ctx context.Context, definition Definition) (int, error) {
	projection := "#pk"
	names := map[string]string{"#pk": definition.Partition.Name}
	if definition.Sort != nil {
		projection += ", #sk"
		names["#sk"] = definition.Sort.Name
	}

	deleted := 0
	var startKey map[string]dbtypes.AttributeValue
	for {
		output, err := a.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(definition.Name),
			ProjectionExpression:     aws.String(projection),
			ExpressionAttributeNames: names,
			ExclusiveStartKey:        startKey,
		})
		if err != nil {
			return deleted, fmt.Errorf("scanning %s: %w", definition.Name, err)
		}

		accepted, err := a.deleteBatched(ctx, definition.Name, output.Items)
		deleted += accepted
		if err != nil {
			return deleted, err
		}

		if output.LastEvaluatedKey == nil {
			return deleted, nil
		}
		startKey = output.LastEvaluatedKey
	}
}

// deleteBatched issues batched deletes for the given keys, returning
// the number of deletes DynamoDB actually accepted.
func (a *Admin) deleteBatched(ctx context.Context, name string, keys []map[string]dbtypes.AttributeValue) (int, error) {
	accepted := 0
	for start := 0; start < len(keys); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(keys))

		requests := make([]dbtypes.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, dbtypes.WriteRequest{
				DeleteRequest: &dbtypes.DeleteRequest{Key: key},
			})
		}

		count, err := a.writeBatch(ctx, name, requests)
		accepted += count
		if err != nil {
			return accepted, err
		}
	}
	return accepted, nil
}

// writeBatch sends one batch of write requests and resubmits whatever
// DynamoDB returns as unprocessed until the batch drains, backing off
// between attempts. Returns the number of requests accepted.
func (a *Admin) writeBatch(ctx context.Context, name string, requests []dbtypes.WriteRequest) (int, error) {
	accepted := 0
	backoff := unprocessedRetryBackoff
	for attempt := 1; ; attempt++ {
		output, err := a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]dbtypes.WriteRequest{name: requests},
		})
		if err != nil {
			return accepted, fmt.Errorf("batch deleting from %s: %w", name, err)
		}

		remaining := output.UnprocessedItems[name]
		accepted += len(requests) - len(remaining)
		if len(remaining) == 0 {
			return accepted, nil
		}
		if attempt >= unprocessedRetryLimit {
			return accepted, fmt.Errorf("batch deleting from %s: %d requests still unprocessed after %d attempts",
				name, len(remaining), unprocessedRetryLimit)
		}

		a.logger.Warn("batch write throttled, resubmitting",
			"table", name, "unprocessed", len(remaining), "attempt", attempt)
		a.clk.Sleep(backoff)
		backoff *= 2
		requests = remaining
	}
}

// DecodeItem converts a DynamoDB item to plain Go values for display.
// Numbers stay strings so stored precision survives the round trip.
func DecodeItem(item map[string]dbtypes.AttributeValue) map[string]any {
	decoded := make(map[string]any, len(item))
	for name, value := range item {
		decoded[name] = decodeValue(value)
	}
	return decoded
}

func decodeValue(value dbtypes.AttributeValue) any {
	switch typed := value.(type) {
	case *dbtypes.AttributeValueMemberS:
		return typed.Value
	case *dbtypes.AttributeValueMemberN:
		return typed.Value
	case *dbtypes.AttributeValueMemberBOOL:
		return typed.Value
	case *dbtypes.AttributeValueMemberNULL:
		return nil
	case *dbtypes.AttributeValueMemberM:
		return DecodeItem(typed.Value)
	case *dbtypes.AttributeValueMemberL:
		list := make([]any, 0, len(typed.Value))
		for _, element := range typed.Value {
			list = append(list, decodeValue(element))
		}
		return list
	case *dbtypes.AttributeValueMemberSS:
		return typed.Value
	case *dbtypes.AttributeValueMemberNS:
		return typed.Value
	default:
		return fmt.Sprintf("%v", value)
	}
}
