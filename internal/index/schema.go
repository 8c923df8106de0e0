package index

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema pins the index.json wire shape for downstream
// readers, mirroring the metadata-side validation.
const catalogSchema = `{
  "type": "object",
  "required": ["version", "generatedAt", "assets", "totalAssets", "totalFiles"],
  "properties": {
    "version": {"type": "string"},
    "generatedAt": {"type": "string"},
    "assets": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["quarter", "startDate", "endDate"],
            "properties": {
              "quarter": {"type": "string", "pattern": "^\\d{4}-Q[1-4]$"},
              "startDate": {"type": "integer"},
              "endDate": {"type": "integer"}
            },
            "additionalProperties": false
          }
        }
      }
    },
    "totalAssets": {"type": "integer", "minimum": 0},
    "totalFiles": {"type": "integer", "minimum": 0}
  },
  "additionalProperties": false
}`

// MarshalValidated serializes the index and checks the result against
// the embedded JSON Schema.
func (c CatalogIndex) MarshalValidated() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal index: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate index: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for _, e := range result.Errors() {
			sb.WriteString("- ")
			sb.WriteString(e.String())
			sb.WriteString("\n")
		}
		return nil, fmt.Errorf("index failed schema validation:\n%s", sb.String())
	}

	return data, nil
}
