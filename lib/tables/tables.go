// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package tables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chinthakat/trading-bot-aws/lib/clock"
	"github.com/chinthakat/trading-bot-aws/lib/config"
)

// DynamoAPI is the subset of the DynamoDB client used by this package.
// It includes DescribeTable so the SDK's table waiters accept it.
type DynamoAPI interface {
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// KeyAttr is one key schema attribute.
type KeyAttr struct {
	Name string
	Type dbtypes.ScalarAttributeType
}

// Definition is the schema of one table. Provisioned tables use fixed
// 5/5 read/write capacity; everything else is on demand.
type Definition struct {
	Name        string
	Partition   KeyAttr
	Sort        *KeyAttr
	Provisioned bool
}

// CoreDefinitions returns the four tables the bot requires to run.
func CoreDefinitions(names config.TableNames) []Definition {
	return []Definition{
		{Name: names.Trades, Partition: KeyAttr{"trade_id", dbtypes.ScalarAttributeTypeS}},
		{Name: names.Stats, Partition: KeyAttr{"stat_type", dbtypes.ScalarAttributeTypeS},
			Sort: &KeyAttr{"algo", dbtypes.ScalarAttributeTypeS}},
		{Name: names.Prices, Partition: KeyAttr{"symbol", dbtypes.ScalarAttributeTypeS},
			Sort: &KeyAttr{"timestamp", dbtypes.ScalarAttributeTypeN}},
		{Name: names.Signals, Partition: KeyAttr{"signal_id", dbtypes.ScalarAttributeTypeS}},
	}
}

// AuditDefinitions returns the live and test audit log tables.
func AuditDefinitions(names config.TableNames) []Definition {
	auditKey := KeyAttr{"log_id", dbtypes.ScalarAttributeTypeS}
	auditSort := KeyAttr{"timestamp", dbtypes.ScalarAttributeTypeN}
	return []Definition{
		{Name: names.Audit, Partition: auditKey, Sort: &auditSort, Provisioned: true},
		{Name: names.TestAudit, Partition: auditKey, Sort: &auditSort, Provisioned: true},
	}
}

// PositionDefinitions returns the live position and order tables.
func PositionDefinitions(names config.TableNames) []Definition {
	return []Definition{
		{Name: names.Positions, Partition: KeyAttr{"position_id", dbtypes.ScalarAttributeTypeS}},
		{Name: names.Orders, Partition: KeyAttr{"order_id", dbtypes.ScalarAttributeTypeS}},
	}
}

// TestDefinitions returns the paper-trading tables.
func TestDefinitions(names config.TableNames) []Definition {
	return []Definition{
		{Name: names.TestPositions, Partition: KeyAttr{"position_id", dbtypes.ScalarAttributeTypeS}},
		{Name: names.TestOrders, Partition: KeyAttr{"order_id", dbtypes.ScalarAttributeTypeS}},
		{Name: names.TestAccount, Partition: KeyAttr{"account_id", dbtypes.ScalarAttributeTypeS},
			Sort: &KeyAttr{"timestamp", dbtypes.ScalarAttributeTypeN}},
	}
}

// AllDefinitions returns every table the tooling knows about.
func AllDefinitions(names config.TableNames) []Definition {
	var definitions []Definition
	definitions = append(definitions, CoreDefinitions(names)...)
	definitions = append(definitions, AuditDefinitions(names)...)
	definitions = append(definitions, PositionDefinitions(names)...)
	definitions = append(definitions, TestDefinitions(names)...)
	return definitions
}

// PricesDefinition returns the schema of the named prices table.
func PricesDefinition(name string) Definition {
	return Definition{
		Name:      name,
		Partition: KeyAttr{"symbol", dbtypes.ScalarAttributeTypeS},
		Sort:      &KeyAttr{"timestamp", dbtypes.ScalarAttributeTypeN},
	}
}

// Admin performs table administration against one DynamoDB endpoint.
type Admin struct {
	client DynamoAPI
	clk    clock.Clock
	logger *slog.Logger
}

// NewAdmin returns an Admin on the given client. The clock paces
// resubmission of throttled batch writes; pass [clock.Real] outside
// of tests.
func NewAdmin(client DynamoAPI, clk clock.Clock, logger *slog.Logger) *Admin {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{client: client, clk: clk, logger: logger}
}

// CreateInput builds the CreateTable request for a definition.
func CreateInput(definition Definition) *dynamodb.CreateTableInput {
	keySchema := []dbtypes.KeySchemaElement{{
		AttributeName: aws.String(definition.Partition.Name),
		KeyType:       dbtypes.KeyTypeHash,
	}}
	attributes := []dbtypes.AttributeDefinition{{
		AttributeName: aws.String(definition.Partition.Name),
		AttributeType: definition.Partition.Type,
	}}
	if definition.Sort != nil {
		keySchema = append(keySchema, dbtypes.KeySchemaElement{
			AttributeName: aws.String(definition.Sort.Name),
			KeyType:       dbtypes.KeyTypeRange,
		})
		attributes = append(attributes, dbtypes.AttributeDefinition{
			AttributeName: aws.String(definition.Sort.Name),
			AttributeType: definition.Sort.Type,
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(definition.Name),
		KeySchema:            keySchema,
		AttributeDefinitions: attributes,
	}
	if definition.Provisioned {
		input.ProvisionedThroughput = &dbtypes.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		}
	} else {
		input.BillingMode = dbtypes.BillingModePayPerRequest
	}
	return input
}

// Create creates the table and waits until it is active. An existing
// table is left alone.
func (a *Admin) Create(ctx context.Context, definition Definition, maxWait time.Duration) error {
	_, err := a.client.CreateTable(ctx, CreateInput(definition))
	if err != nil {
		var inUse *dbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			a.logger.Info("table exists", "table", definition.Name)
			return nil
		}
		return fmt.Errorf("creating table %s: %w", definition.Name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(a.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(definition.Name),
	}, maxWait); err != nil {
		return fmt.Errorf("waiting for table %s: %w", definition.Name, err)
	}

	a.logger.Info("table created", "table", definition.Name)
	return nil
}

// CreateAll creates every missing table in the set, comparing against
// ListTables first so existing tables cost no write calls.
func (a *Admin) CreateAll(ctx context.Context, definitions []Definition, maxWait time.Duration) error {
	existing, err := a.listNames(ctx)
	if err != nil {
		return err
	}

	for _, definition := range definitions {
		if existing[definition.Name] {
			a.logger.Info("table exists", "table", definition.Name)
			continue
		}
		if err := a.Create(ctx, definition, maxWait); err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes the table and waits until it is gone. A missing table
// is not an error.
func (a *Admin) Delete(ctx context.Context, name string, maxWait time.Duration) error {
	_, err := a.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		var notFound *dbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			a.logger.Info("table did not exist", "table", name)
			return nil
		}
		return fmt.Errorf("deleting table %s: %w", name, err)
	}

	waiter := dynamodb.NewTableNotExistsWaiter(a.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	}, maxWait); err != nil {
		return fmt.Errorf("waiting for deletion of %s: %w", name, err)
	}

	a.logger.Info("table deleted", "table", name)
	return nil
}

// Recreate drops and recreates the table, losing all data.
func (a *Admin) Recreate(ctx context.Context, definition Definition, maxWait time.Duration) error {
	if err := a.Delete(ctx, definition.Name, maxWait); err != nil {
		return err
	}
	return a.Create(ctx, definition, maxWait)
}

func (a *Admin) listNames(ctx context.Context) (map[string]bool, error) {
	names := make(map[string]bool)
	var startName *string
	for {
		output, err := a.client.ListTables(ctx, &dynamodb.ListTablesInput{
			ExclusiveStartTableName: startName,
		})
		if err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		for _, name := range output.TableNames {
			names[name] = true
		}
		if output.LastEvaluatedTableName == nil {
			return names, nil
		}
		startName = output.LastEvaluatedTableName
	}
}
