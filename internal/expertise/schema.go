package expertise

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

const expertiseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["primaryField", "relatedFields", "keywords"],
  "properties": {
    "primaryField": {"type": "string"},
    "relatedFields": {"type": "array", "items": {"type": "string"}},
    "keywords": {"type": "array", "items": {"type": "string"}}
  }
}`

var schema = mustSchema(expertiseSchema)

func mustSchema(s string) *gojsonschema.Schema {
	sc, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("expertise schema: %v", err))
	}
	return sc
}

// ErrMalformed is wrapped by every Parse failure.
var ErrMalformed = errors.New("malformed expertise response")

// Parse validates raw as a single expertise object. Surrounding whitespace is allowed; any
// other text before or after the object, a missing or extra key, or a wrongly typed value
// is rejected.
func Parse(raw string) (models.Expertise, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return models.EmptyExpertise(), fmt.Errorf("%w: response does not start with an object", ErrMalformed)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	var obj json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return models.EmptyExpertise(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return models.EmptyExpertise(), fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(obj))
	if err != nil {
		return models.EmptyExpertise(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return models.EmptyExpertise(), fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
	}

	var e models.Expertise
	if err := json.NewDecoder(bytes.NewReader(obj)).Decode(&e); err != nil {
		return models.EmptyExpertise(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.RelatedFields == nil {
		e.RelatedFields = []string{}
	}
	if e.Keywords == nil {
		e.Keywords = []string{}
	}
	return e, nil
}
