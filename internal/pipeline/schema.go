package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordArraySchema describes the shape the model was instructed to emit:
// an array of objects with the canonical field set. Types are deliberately
// loose on the amount fields (the normalizer coerces them); membership of
// vendor/account values is not a schema concern.
func recordArraySchema() map[string]any {
	amount := map[string]any{"type": []string{"number", "string", "null"}}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			// Date is absent in classification responses; the normalizer
			// enforces date validity for extraction records.
			"type":     "object",
			"required": []string{"Description"},
			"properties": map[string]any{
				"Date":               map[string]any{"type": []string{"string", "null"}},
				"Description":        map[string]any{"type": "string"},
				"Deposits_Credits":   amount,
				"Withdrawals_Debits": amount,
				"Vendor Name":        map[string]any{"type": []string{"string", "null"}},
				"Account":            map[string]any{"type": []string{"string", "null"}},
			},
		},
	}
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		b, err := json.Marshal(recordArraySchema())
		if err != nil {
			recordSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("records.json", bytes.NewReader(b)); err != nil {
			recordSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = compiler.Compile("records.json")
	})
	return recordSchema, recordSchemaErr
}

// validateRecordArray checks that the parsed value resembles a record list.
func validateRecordArray(parsed any) error {
	schema, err := compiledRecordSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return &MalformedOutputError{Reason: "response does not resemble a record list", Err: err}
	}
	return nil
}
