package migrate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var schemaLog = logger.New("migrate:schema")

//go:embed schemas/migration_data_schema.json
var migrationDataSchema string

// Compiled once and cached; validation runs on every export and import.
var (
	migrationDataSchemaOnce     sync.Once
	compiledMigrationDataSchema *jsonschema.Schema
	migrationDataSchemaError    error
)

func getCompiledMigrationDataSchema() (*jsonschema.Schema, error) {
	migrationDataSchemaOnce.Do(func() {
		compiledMigrationDataSchema, migrationDataSchemaError = compileSchema(migrationDataSchema, "http://contoso.com/migration-data-schema.json")
	})
	return compiledMigrationDataSchema, migrationDataSchemaError
}

func compileSchema(schemaJSON, schemaURL string) (*jsonschema.Schema, error) {
	schemaLog.Printf("Compiling JSON schema: %s", schemaURL)

	compiler := jsonschema.NewCompiler()

	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// ValidateMigrationData checks a snapshot against the migration data
// schema. Runs on the generic JSON form, so it catches shape drift both
// in freshly exported data and in hand-edited items.json files.
func ValidateMigrationData(data *MigrationData) error {
	schema, err := getCompiledMigrationDataSchema()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize migration data: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("failed to deserialize migration data: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("migration data is not valid: %w", err)
	}
	return nil
}
