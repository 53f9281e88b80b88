// internal/catalog/schema.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema is the shape contract for the catalog file. Scores are
// permissive on purpose: a bad value in one program is handled per-entry
// by the ranking scan, not by rejecting the whole file.
const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["otmlar"],
  "properties": {
    "otmlar": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["otm_nomi", "ta'lim_yo'nalishlari"],
        "properties": {
          "otm_nomi": {"type": "string"},
          "otm_hududi": {"type": "string"},
          "ta'lim_yo'nalishlari": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["ta'lim_yo'nalishi_nomi", "fanlar"],
              "properties": {
                "ta'lim_yo'nalishi_nomi": {"type": "string"},
                "fanlar": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["nomi", "tartib"],
                    "properties": {
                      "nomi": {"type": "string"},
                      "tartib": {"type": "integer"}
                    }
                  }
                },
                "o'tish_ballari": {
                  "type": "object",
                  "properties": {
                    "grant": {"type": "object", "additionalProperties": {"type": "number"}},
                    "kontrakt": {"type": "object", "additionalProperties": {"type": "number"}}
                  }
                },
                "education_form": {"type": "string"},
                "language": {"type": "string"},
                "kontrakt_miqdori": {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

// validateDocument checks the raw catalog JSON against the schema and
// returns an aggregated error listing every violation.
func validateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return fmt.Errorf("catalog file does not match schema: %s", strings.Join(violations, "; "))
	}
	return nil
}
