// Package validator checks netlists read by addfi and fact tables written by
// it against embedded CUE schemas.
//
// A netlist that does not match the schema is rejected before any module is
// built, with every violation listed. Fact tables are checked before they are
// written so consumers never see rows the schema does not describe.
package validator

import (
	"embed"
	"encoding/json"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pkg/errors"
)

//go:embed netlist_schema.cue
var netlistSchemaFS embed.FS

//go:embed facts_schema.cue
var factsSchemaFS embed.FS

// Validator validates netlist JSON against the #Netlist schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a new Validator with the embedded netlist schema
func New() (*Validator, error) {
	ctx, schema, err := compileSchema(netlistSchemaFS, "netlist_schema.cue")
	if err != nil {
		return nil, err
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// ValidateJSON validates netlist JSON bytes.
// Returns nil if valid, or an error carrying every violation.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	if err := unify(v.ctx, v.schema, "#Netlist", jsonBytes); err != nil {
		return errors.Wrap(err, "netlist schema validation failed")
	}
	return nil
}

// ValidationErrors returns one message per violation, or nil.
func (v *Validator) ValidationErrors(jsonBytes []byte) []string {
	err := unify(v.ctx, v.schema, "#Netlist", jsonBytes)
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range cueerrors.Errors(err) {
		errs = append(errs, e.Error())
	}
	if len(errs) == 0 {
		errs = append(errs, err.Error())
	}
	return errs
}

// FactsValidator validates relational fact tables against the facts schema.
type FactsValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewFactsValidator creates a validator for relational fact tables.
func NewFactsValidator() (*FactsValidator, error) {
	ctx, schema, err := compileSchema(factsSchemaFS, "facts_schema.cue")
	if err != nil {
		return nil, err
	}
	return &FactsValidator{ctx: ctx, schema: schema}, nil
}

// Validate checks that the fact tables conform to #FactTables.
func (v *FactsValidator) Validate(data interface{}) error {
	return v.validate("#FactTables", data)
}

// ValidateDelta checks a fact delta against #FactDelta.
func (v *FactsValidator) ValidateDelta(data interface{}) error {
	return v.validate("#FactDelta", data)
}

func (v *FactsValidator) validate(def string, data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshaling facts to JSON")
	}
	if err := unify(v.ctx, v.schema, def, jsonBytes); err != nil {
		return errors.Wrap(err, "facts schema validation failed")
	}
	return nil
}

func compileSchema(fs embed.FS, name string) (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fs.ReadFile(name)
	if err != nil {
		return nil, cue.Value{}, errors.Wrapf(err, "loading embedded schema %s", name)
	}

	schema := ctx.CompileBytes(schemaBytes, cue.Filename(name))
	if schema.Err() != nil {
		return nil, cue.Value{}, errors.Wrapf(schema.Err(), "compiling schema %s", name)
	}
	return ctx, schema, nil
}

// unify returns the raw CUE error so callers can split it into violations.
func unify(ctx *cue.Context, schema cue.Value, def string, jsonBytes []byte) error {
	dataValue := ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return dataValue.Err()
	}

	defValue := schema.LookupPath(cue.ParsePath(def))
	if defValue.Err() != nil {
		return errors.Wrapf(defValue.Err(), "looking up %s definition", def)
	}

	return defValue.Unify(dataValue).Validate(cue.Concrete(true))
}
