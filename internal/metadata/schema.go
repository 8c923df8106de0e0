package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// partitionSchema pins the metadata wire shape. Marshalled documents
// are validated against it before anything reaches remote storage, so
// a refactor that drifts a field name fails loudly here instead of in
// a downstream reader.
const partitionSchema = `{
  "type": "object",
  "required": [
    "asset", "timeframe", "quarter", "startDate", "endDate", "bars",
    "dataTier", "source", "compressed", "compressionFormat",
    "compressionLevel", "sizeBytes", "checksumSHA256", "uploadedAt",
    "version"
  ],
  "properties": {
    "asset": {"type": "string", "minLength": 1},
    "timeframe": {"type": "string", "minLength": 1},
    "quarter": {"type": "string", "pattern": "^\\d{4}-Q[1-4]$"},
    "startDate": {"type": "integer"},
    "endDate": {"type": "integer"},
    "bars": {"type": "integer", "minimum": 0},
    "dataTier": {"type": "string", "enum": ["TIER_1_PREMIUM", "TIER_3_STANDARD", "TIER_4_BASIC"]},
    "source": {"type": "string", "minLength": 1},
    "compressed": {"type": "boolean"},
    "compressionFormat": {"type": "string"},
    "compressionLevel": {"type": "integer"},
    "sizeBytes": {"type": "integer", "minimum": 0},
    "checksumSHA256": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
    "uploadedAt": {"type": "string"},
    "version": {"type": "string"}
  },
  "additionalProperties": false
}`

// MarshalValidated serializes the metadata and checks the result
// against the embedded JSON Schema.
func (m PartitionMetadata) MarshalValidated() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(partitionSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate metadata: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for _, e := range result.Errors() {
			sb.WriteString("- ")
			sb.WriteString(e.String())
			sb.WriteString("\n")
		}
		return nil, fmt.Errorf("metadata failed schema validation:\n%s", sb.String())
	}

	return data, nil
}
