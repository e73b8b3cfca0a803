package memorysvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/GooseXRL8/flowerlove/internal/services"
	"github.com/GooseXRL8/flowerlove/internal/store"
)

// celFilter is a compiled filter expression. The zero value matches everything.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("memory", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, fmt.Errorf("memories: filter: %v: %w", iss.Err(), services.ErrInvalidArgument)
	}
	if ot := ast.OutputType(); !ot.IsExactType(cel.BoolType) && !ot.IsExactType(cel.DynType) {
		return celFilter{}, fmt.Errorf("memories: filter must be boolean, got %s: %w", ot, services.ErrInvalidArgument)
	}
	prog, err := env.Program(ast)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// activation exposes m under the names documented on the package.
func activation(m store.Memory, now time.Time) map[string]any {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"memory": map[string]any{
			"title":       m.Title,
			"description": m.Description,
			"location":    store.Deref(m.Location),
			"tags":        tags,
			"favorite":    m.IsFavorite,
			"date_ms":     m.Date.UnixMilli(),
			"year":        int64(m.Date.Year()),
		},
		"now_ms": now.UnixMilli(),
	}
}

// Match reports whether m passes the filter. Evaluation errors do not match.
func (f celFilter) Match(m store.Memory, now time.Time) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(activation(m, now))
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
