// Package schema validates wire records against the CUE definitions in
// record.cue before they are turned back into live entities.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/wire"
)

//go:embed record.cue
var source string

// Source returns the CUE text records are validated against.
func Source() string {
	return source
}

// definitions maps each entity type to its CUE definition.
var definitions = map[graph.EntityType]string{
	graph.TypeElement: "#Element",
	graph.TypeNode:    "#Node",
	graph.TypeEdge:    "#Edge",
	graph.TypeAction:  "#Action",
}

// ValidationError reports a record that does not satisfy its definition.
type ValidationError struct {
	// Type is the record's declared entity type, if readable.
	Type string

	// Path is the dotted path of the first offending field, if known.
	Path string

	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid %s record at %s: %s", e.Type, e.Path, e.Message)
	}
	return fmt.Sprintf("invalid %s record: %s", e.Type, e.Message)
}

// Validator holds a compiled schema. A cue.Context is not safe for concurrent
// use, so calls are serialized.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source, cue.Filename("record.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

var (
	defaultOnce sync.Once
	defaultVal  *Validator
	defaultErr  error
)

// Validate checks rec against the package's shared validator.
func Validate(rec wire.Record) error {
	defaultOnce.Do(func() {
		defaultVal, defaultErr = New()
	})
	if defaultErr != nil {
		return defaultErr
	}
	return defaultVal.Validate(rec)
}

// Validate checks a detailed record against the definition its entity_type
// selects. Every field must be present and concrete.
func (v *Validator) Validate(rec wire.Record) error {
	raw, _ := rec.Str(graph.KeyEntityType)
	def, ok := definitions[graph.EntityType(raw)]
	if !ok {
		return &ValidationError{Type: raw, Path: graph.KeyEntityType, Message: fmt.Sprintf("unknown entity type %q", raw)}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	schema := v.schema.LookupPath(cue.ParsePath(def))
	val := v.ctx.Encode(wire.ToGo(rec))
	if err := val.Err(); err != nil {
		return &ValidationError{Type: raw, Message: err.Error()}
	}
	if err := schema.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return toValidationError(raw, err)
	}
	return nil
}

func toValidationError(typ string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Type: typ, Message: err.Error()}
	}
	first := errs[0]
	format, args := first.Msg()
	return &ValidationError{
		Type:    typ,
		Path:    strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
}
