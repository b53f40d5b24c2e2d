package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"lox/interpreter-go/pkg/runtime"
)

// Stringify renders a value the way print does.
func Stringify(val runtime.Value) string {
	return stringify(val)
}

func stringify(val runtime.Value) string {
	switch v := val.(type) {
	case nil:
		return "nil"
	case runtime.NilValue:
		return "nil"
	case runtime.BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case runtime.NumberValue:
		return formatNumber(v.Val)
	case runtime.StringValue:
		return v.Val
	case *runtime.NativeFunctionValue:
		return fmt.Sprintf("<fn %s>", v.Name)
	case *runtime.FunctionValue:
		if v.Name == "" {
			return "<fn anonymous>"
		}
		return fmt.Sprintf("<fn %s>", v.Name)
	case *runtime.ClassValue:
		return fmt.Sprintf("<class %s>", v.Name)
	case *runtime.InstanceValue:
		return fmt.Sprintf("%s instance", v.Class.Name)
	default:
		return fmt.Sprintf("<%s>", val.Kind())
	}
}

// formatNumber prints the shortest decimal that round-trips, without an
// exponent or a trailing ".0".
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func isTruthy(val runtime.Value) bool {
	switch v := val.(type) {
	case nil, runtime.NilValue:
		return false
	case runtime.BoolValue:
		return v.Val
	default:
		return true
	}
}

// valuesEqual compares scalars by value and everything else by identity.
func valuesEqual(a, b runtime.Value) bool {
	switch av := a.(type) {
	case runtime.NilValue:
		_, ok := b.(runtime.NilValue)
		return ok
	case runtime.BoolValue:
		bv, ok := b.(runtime.BoolValue)
		return ok && av.Val == bv.Val
	case runtime.NumberValue:
		bv, ok := b.(runtime.NumberValue)
		return ok && av.Val == bv.Val
	case runtime.StringValue:
		bv, ok := b.(runtime.StringValue)
		return ok && av.Val == bv.Val
	default:
		return a == b
	}
}
