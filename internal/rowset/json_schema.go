package rowset

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the accepted JSON shape: one row object or an
// array of them. A "meta" object maps field names to objects holding a
// numeric ColumnType and scalar attributes.
const documentSchema = `{
  "definitions": {
    "fieldMeta": {
      "type": "object",
      "properties": {
        "ColumnType": {"type": ["string", "integer"], "pattern": "^\\s*-?[0-9]+\\s*$"},
        "ColumnTypeName": {"type": "string"}
      },
      "additionalProperties": {"type": ["string", "number", "boolean", "null"]}
    },
    "row": {
      "type": "object",
      "properties": {
        "meta": {
          "anyOf": [
            {"not": {"type": "object"}},
            {"type": "object", "additionalProperties": {"$ref": "#/definitions/fieldMeta"}}
          ]
        }
      }
    }
  },
  "anyOf": [
    {"type": "array", "items": {"$ref": "#/definitions/row"}},
    {"$ref": "#/definitions/row"}
  ]
}`

var document = mustSchema(documentSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// validateDocument checks data against documentSchema.
func validateDocument(data []byte) error {
	result, err := document.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Wrap(err, "JSON")
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return errors.Errorf("JSON: document invalid: %s", strings.Join(msgs, "; "))
}
