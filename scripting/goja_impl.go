package scripting

import (
	"context"

	"github.com/dop251/goja"

	"github.com/wudi/pdftable/observability"
)

type GojaEngine struct {
	vm  *goja.Runtime
	log observability.Logger
}

// NewEngine returns an engine whose scripts log through log. A nil logger
// discards script output.
func NewEngine(log observability.Logger) *GojaEngine {
	if log == nil {
		log = observability.NopLogger{}
	}
	vm := goja.New()
	e := &GojaEngine{vm: vm, log: log}
	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		e.log.Info("script", observability.String("message", msg))
		return goja.Undefined()
	})
	vm.Set("console", console)
	return e
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	val, err := e.guard(ctx, func() (goja.Value, error) {
		return e.vm.RunString(script)
	})
	if err != nil {
		return nil, err
	}
	return val.Export(), nil
}

// guard runs fn and interrupts the VM when ctx is done.
func (e *GojaEngine) guard(ctx context.Context, fn func() (goja.Value, error)) (goja.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := fn()
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val, nil
}

func (e *GojaEngine) RegisterTable(view TableView) error {
	obj := e.vm.NewObject()
	err := obj.DefineAccessorProperty("rows",
		e.vm.ToValue(func(goja.FunctionCall) goja.Value { return e.vm.ToValue(view.Rows()) }),
		nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	if err != nil {
		return err
	}
	err = obj.DefineAccessorProperty("columns",
		e.vm.ToValue(func(goja.FunctionCall) goja.Value { return e.vm.ToValue(view.Columns()) }),
		nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	if err != nil {
		return err
	}
	err = obj.Set("text", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		row := int(call.Argument(0).ToInteger())
		col := int(call.Argument(1).ToInteger())
		return e.vm.ToValue(view.Text(row, col))
	})
	if err != nil {
		return err
	}
	return e.vm.Set("table", obj)
}
