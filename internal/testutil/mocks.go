// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"fmt"
	"sync"

	"dbobjects/internal/domain"
)

// === Statement API Mock ===

// MockStatementAPI implements domain.StatementAPI for testing.
// Without hooks, Submit returns sequential ids and Describe reports FINISHED.
type MockStatementAPI struct {
	SubmitFn   func(ctx context.Context, sql string, target domain.ExecutionTarget) (string, error)
	DescribeFn func(ctx context.Context, statementID string) (domain.StatementDescription, error)

	mu        sync.Mutex
	submitted []string
	describes int
}

// Submit implements the interface method for testing.
func (m *MockStatementAPI) Submit(ctx context.Context, sql string, target domain.ExecutionTarget) (string, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, sql)
	n := len(m.submitted)
	m.mu.Unlock()

	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, sql, target)
	}
	return fmt.Sprintf("stmt-%d", n), nil
}

// Describe implements the interface method for testing.
func (m *MockStatementAPI) Describe(ctx context.Context, statementID string) (domain.StatementDescription, error) {
	m.mu.Lock()
	m.describes++
	m.mu.Unlock()

	if m.DescribeFn != nil {
		return m.DescribeFn(ctx, statementID)
	}
	return domain.StatementDescription{Status: domain.StatementFinished}, nil
}

// Submitted returns the statements submitted so far, in submission order.
func (m *MockStatementAPI) Submitted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.submitted...)
}

// Describes returns the number of status polls made.
func (m *MockStatementAPI) Describes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.describes
}

// ScriptedStatuses returns a DescribeFn that reports the given statuses in
// order and repeats the last one once the script is exhausted.
func ScriptedStatuses(statuses ...domain.StatementDescription) func(context.Context, string) (domain.StatementDescription, error) {
	var mu sync.Mutex
	i := 0
	return func(context.Context, string) (domain.StatementDescription, error) {
		mu.Lock()
		defer mu.Unlock()
		d := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		return d, nil
	}
}

// === Statement Runner Mock ===

// ExecMode records how a batch of statements was dispatched.
type ExecMode string

// Dispatch modes recorded by MockStatementRunner.
const (
	ExecSingle     ExecMode = "single"
	ExecSequential ExecMode = "sequential"
	ExecConcurrent ExecMode = "concurrent"
)

// ExecCall is one recorded call on MockStatementRunner.
type ExecCall struct {
	Mode       ExecMode
	Statements []string
	Target     domain.ExecutionTarget
}

// MockStatementRunner implements domain.StatementRunner for testing.
// ExecuteFn, when set, is consulted for every individual statement; a
// sequential batch stops at the first error like the real executor.
type MockStatementRunner struct {
	ExecuteFn func(ctx context.Context, sql string, target domain.ExecutionTarget) error

	mu    sync.Mutex
	calls []ExecCall
}

// Execute implements the interface method for testing.
func (m *MockStatementRunner) Execute(ctx context.Context, sql string, target domain.ExecutionTarget) error {
	m.record(ExecSingle, []string{sql}, target)
	return m.run(ctx, sql, target)
}

// ExecuteSequential implements the interface method for testing.
func (m *MockStatementRunner) ExecuteSequential(ctx context.Context, statements []string, target domain.ExecutionTarget) error {
	m.record(ExecSequential, statements, target)
	for _, stmt := range statements {
		if err := m.run(ctx, stmt, target); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteConcurrent implements the interface method for testing.
func (m *MockStatementRunner) ExecuteConcurrent(ctx context.Context, statements []string, target domain.ExecutionTarget) error {
	m.record(ExecConcurrent, statements, target)
	var firstErr error
	for _, stmt := range statements {
		if err := m.run(ctx, stmt, target); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MockStatementRunner) run(ctx context.Context, sql string, target domain.ExecutionTarget) error {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, sql, target)
	}
	return nil
}

func (m *MockStatementRunner) record(mode ExecMode, statements []string, target domain.ExecutionTarget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ExecCall{Mode: mode, Statements: append([]string(nil), statements...), Target: target})
}

// Calls returns the recorded calls in order.
func (m *MockStatementRunner) Calls() []ExecCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecCall(nil), m.calls...)
}

// Statements returns every statement passed to the runner, flattened in call order.
func (m *MockStatementRunner) Statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		out = append(out, c.Statements...)
	}
	return out
}

// === Secret Resolver Mock ===

// MockSecretResolver implements domain.SecretResolver for testing.
type MockSecretResolver struct {
	ResolveFn func(ctx context.Context, secretARN string) (domain.Credentials, error)
	Secrets   map[string]domain.Credentials // consulted when ResolveFn is nil
}

// ResolveCredentials implements the interface method for testing.
func (m *MockSecretResolver) ResolveCredentials(ctx context.Context, secretARN string) (domain.Credentials, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, secretARN)
	}
	if creds, ok := m.Secrets[secretARN]; ok {
		return creds, nil
	}
	return domain.Credentials{}, domain.ErrNotFound("secret %s not found", secretARN)
}
