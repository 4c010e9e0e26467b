package playerjs

import (
	"context"
	"errors"
	"fmt"

	"github.com/robertkrimen/otto"
)

// ottoSandbox evaluates with the ES5-only otto interpreter. Scripts using
// ES6 syntax will fail to parse here; EngineGoja handles those.
type ottoSandbox struct{}

var errSandboxInterrupted = errors.New("sandbox interrupted")

func (ottoSandbox) EvalFunction(ctx context.Context, fnSource, arg string) (string, error) {
	vm := otto.New()
	vm.Interrupt = make(chan func(), 1)
	done := make(chan evalResult, 1)
	go func() {
		done <- runOtto(vm, fnSource, arg)
	}()
	select {
	case <-ctx.Done():
		vm.Interrupt <- func() { panic(errSandboxInterrupted) }
		<-done
		return "", ctx.Err()
	case r := <-done:
		return r.out, r.err
	}
}

func runOtto(vm *otto.Otto, fnSource, arg string) (res evalResult) {
	defer func() {
		if rec := recover(); rec != nil {
			if err, ok := rec.(error); ok && errors.Is(err, errSandboxInterrupted) {
				res = evalResult{err: errSandboxInterrupted}
				return
			}
			res = evalResult{err: fmt.Errorf("sandbox panic: %v", rec)}
		}
	}()
	if _, err := vm.Run(sandboxPrelude); err != nil {
		return evalResult{err: err}
	}
	if _, err := vm.Run(transformBinding + "=" + fnSource); err != nil {
		return evalResult{err: err}
	}
	val, err := vm.Call(transformBinding, nil, arg)
	if err != nil {
		return evalResult{err: err}
	}
	out, err := val.ToString()
	if err != nil {
		return evalResult{err: err}
	}
	return evalResult{out: out}
}
