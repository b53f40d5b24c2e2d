package interpreter

import (
	"time"

	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) registerNatives() {
	i.DefineNative("clock", 0, func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
		return runtime.NumberValue{Val: float64(time.Now().UnixMilli()) / 1000.0}, nil
	})
}
