package summarizerfakes

import (
	"context"
	"sync"
)

// InvokeCall records the arguments of one Invoke call
type InvokeCall struct {
	AccessToken string
	Text        string
}

// FakeInvoker is a scriptable Invoker implementation for tests
type FakeInvoker struct {
	mu sync.Mutex

	// Output and Err script the Invoke result
	Output string
	Err    error

	// Calls records every invocation
	Calls []InvokeCall
}

// NewFakeInvoker creates a FakeInvoker returning a canned summary
func NewFakeInvoker() *FakeInvoker {
	return &FakeInvoker{Output: "fake summary"}
}

func (f *FakeInvoker) Invoke(_ context.Context, accessToken, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, InvokeCall{AccessToken: accessToken, Text: text})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Output, nil
}

// CallCount returns how many times Invoke ran
func (f *FakeInvoker) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
