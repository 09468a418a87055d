package report

import (
	"reflect"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Encode renders the report as JSON. Map keys are sorted, so equal reports
// encode to equal bytes.
func Encode(rep *Report, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(rep, "", "  ")
	}
	return json.Marshal(rep)
}

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

// Schema describes the report document.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == rawMessageType {
				return &jsonschema.Schema{Description: "Usage statistics copied from the snapshot."}
			}
			return nil
		},
	}
	return reflector.Reflect(&Report{})
}
