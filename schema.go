package smx

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/jsonc"
)

var (
	//go:embed schema/global.schema.json
	globalSchema string
	//go:embed schema/local.schema.json
	localSchema string
)

// Problem is a single schema violation found by Check.
type Problem struct {
	// Path is the slash separated location inside the document, empty for the root.
	Path    string
	Message string
}

// String implements fmt.Stringer.
func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}

	return p.Path + ": " + p.Message
}

// CheckGlobal validates the raw global config document held by s.
func CheckGlobal(s Storage) ([]Problem, error) {
	return check(s, "global.schema.json", globalSchema)
}

// CheckLocal validates the raw local config document held by s.
func CheckLocal(s Storage) ([]Problem, error) {
	return check(s, "local.schema.json", localSchema)
}

// check reports the problems of the stored document. It reads the text
// directly instead of going through ConfigFile since Init replaces a
// broken document with the template.
func check(s Storage, name, schema string) ([]Problem, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	raw := s.ReadText("")
	if strings.TrimSpace(raw) == "" {
		return []Problem{{Message: "document is missing or empty"}}, nil
	}

	var doc any
	if err := json.Unmarshal(jsonc.ToJSON([]byte(raw)), &doc); err != nil {
		return []Problem{{Message: "not valid JSON: " + err.Error()}}, nil
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("failed to validate %s: %w", s.Path(), err)
	}

	var problems []Problem
	collectProblems(ve, &problems)
	debug.V(1).Log("%s has %d schema problems", s.Path(), len(problems))

	return problems, nil
}

func collectProblems(ve *jsonschema.ValidationError, out *[]Problem) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Problem{
			Path:    strings.TrimPrefix(ve.InstanceLocation, "/"),
			Message: ve.Message,
		})

		return
	}

	for _, c := range ve.Causes {
		collectProblems(c, out)
	}
}
