package interp

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/gomeson/lang"
)

// flow is the control-flow outcome of executing a statement.
type flow int

const (
	proceed flow = iota
	breakLoop
	continueLoop
)

// execBlock executes statements in order, stopping at the first one that
// breaks or continues and returning that outcome.
func (in *Interpreter) execBlock(ctx context.Context, stmts []lang.Stmt) (flow, error) {
	for _, s := range stmts {
		if err := context.Cause(ctx); err != nil {
			return proceed, locate(runtimeErrorf("%w", err), in.file, s.Position())
		}

		f, err := in.execStmt(ctx, s)
		if err != nil {
			return proceed, locate(err, in.file, s.Position())
		}

		if f != proceed {
			return f, nil
		}
	}

	return proceed, nil
}

func (in *Interpreter) execStmt(ctx context.Context, s lang.Stmt) (flow, error) {
	in.logger.TraceContext(ctx, "exec",
		slog.String("file", in.file),
		slog.String("pos", s.Position().String()),
	)

	switch s := s.(type) {
	case *lang.AssignStmt:
		v, err := in.eval(ctx, s.Value)
		if err != nil {
			return proceed, err
		}

		in.vars[s.Name] = v

	case *lang.AddAssignStmt:
		v, err := in.eval(ctx, s.Value)
		if err != nil {
			return proceed, err
		}

		if old, ok := in.vars[s.Name]; ok {
			if v, err = add(old, v); err != nil {
				return proceed, err
			}
		}

		in.vars[s.Name] = v

	case *lang.ExprStmt:
		if _, err := in.eval(ctx, s.Expr); err != nil {
			return proceed, err
		}

	case *lang.IfStmt:
		return in.execIf(ctx, s)

	case *lang.ForeachStmt:
		return proceed, in.execForeach(ctx, s)

	case *lang.BreakStmt:
		return breakLoop, nil

	case *lang.ContinueStmt:
		return continueLoop, nil
	}

	return proceed, nil
}

func (in *Interpreter) execIf(ctx context.Context, s *lang.IfStmt) (flow, error) {
	for _, b := range s.Branches {
		cond, err := in.eval(ctx, b.Cond)
		if err != nil {
			return proceed, err
		}

		if Truthy(cond) {
			return in.execBlock(ctx, b.Body)
		}
	}

	if s.Else != nil {
		return in.execBlock(ctx, s.Else)
	}

	return proceed, nil
}

func (in *Interpreter) execForeach(ctx context.Context, s *lang.ForeachStmt) error {
	iterable, err := in.eval(ctx, s.Iterable)
	if err != nil {
		return err
	}

	var items []Value

	switch v := iterable.(type) {
	case Array:
		items = v
	case String:
		for _, r := range string(v) {
			items = append(items, String(string(r)))
		}
	case Dict:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			items = append(items, String(k))
		}
	default:
		return typeErrorf("Cannot iterate over %s", typeName(iterable))
	}

	for _, item := range items {
		in.vars[s.Var] = item

		f, err := in.execBlock(ctx, s.Body)
		if err != nil {
			return err
		}

		if f == breakLoop {
			break
		}
	}

	return nil
}
