package playerjs

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
)

// Engine selects the embedded interpreter used for throttling-transform
// evaluation.
type Engine string

const (
	EngineGoja Engine = "goja"
	EngineOtto Engine = "otto"
)

// Sandbox evaluates one downloaded function against one argument in an
// isolated interpreter. Implementations build a fresh interpreter per call so
// no state survives between evaluations, and honor context cancellation by
// interrupting a running script.
type Sandbox interface {
	EvalFunction(ctx context.Context, fnSource, arg string) (string, error)
}

func NewSandbox(engine Engine) Sandbox {
	if engine == EngineOtto {
		return ottoSandbox{}
	}
	return gojaSandbox{}
}

const transformBinding = "__nTransform"

// The scripts occasionally probe browser globals; a DOM-less prelude keeps
// those probes from throwing.
const sandboxPrelude = `
var globalThis = this;
if (typeof window === 'undefined') { var window = this; }
if (typeof navigator === 'undefined') { var navigator = {}; }
if (typeof document === 'undefined') { var document = {}; }
if (typeof location === 'undefined') {
	var location = { href: 'https://www.youtube.com/', hostname: 'www.youtube.com', protocol: 'https:' };
}
if (!window.location) { window.location = location; }
if (typeof XMLHttpRequest === 'undefined') { var XMLHttpRequest = function(){}; }
`

type evalResult struct {
	out string
	err error
}

type gojaSandbox struct{}

func (gojaSandbox) EvalFunction(ctx context.Context, fnSource, arg string) (string, error) {
	vm := goja.New()
	done := make(chan evalResult, 1)
	go func() {
		done <- runGoja(vm, fnSource, arg)
	}()
	select {
	case <-ctx.Done():
		vm.Interrupt(ctx.Err())
		<-done
		return "", ctx.Err()
	case r := <-done:
		return r.out, r.err
	}
}

func runGoja(vm *goja.Runtime, fnSource, arg string) (res evalResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = evalResult{err: fmt.Errorf("sandbox panic: %v", rec)}
		}
	}()
	if _, err := vm.RunString(sandboxPrelude); err != nil {
		return evalResult{err: err}
	}
	if _, err := vm.RunString(transformBinding + "=" + fnSource); err != nil {
		return evalResult{err: err}
	}
	var fn func(string) (string, error)
	if err := vm.ExportTo(vm.Get(transformBinding), &fn); err != nil {
		return evalResult{err: err}
	}
	out, err := fn(arg)
	return evalResult{out: out, err: err}
}
