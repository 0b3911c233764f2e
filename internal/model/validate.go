package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"resume-builder/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/resume.schema.json
var resumeSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(resumeSchema)

// DecodeJSON validates raw JSON against the resume schema and decodes it into
// a record. Schema violations come back as a ValidationError naming the first
// offending field. The result is not yet canonical; run it through the
// normalizer before rendering.
func DecodeJSON(raw []byte) (*ResumeRecord, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, domain.NewValidationError(domain.InvalidFormat, "body", err.Error())
	}
	if !res.Valid() {
		errs := res.Errors()
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.String())
		}
		first := errs[0]
		if first.Type() == "required" {
			if p, ok := first.Details()["property"].(string); ok {
				return nil, domain.NewValidationError(domain.MissingField, p, strings.Join(msgs, "; "))
			}
		}
		field := first.Field()
		if field == "(root)" {
			field = "body"
		}
		return nil, domain.NewValidationError(domain.InvalidFormat, field, strings.Join(msgs, "; "))
	}

	var rec ResumeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, domain.NewValidationError(domain.InvalidFormat, "body", fmt.Sprintf("decode: %v", err))
	}
	return &rec, nil
}

// IsEmail runs the schema library's email format checker.
func IsEmail(s string) bool {
	return gojsonschema.FormatCheckers.IsFormat("email", s)
}
