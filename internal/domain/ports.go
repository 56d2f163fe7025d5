package domain

import "context"

// StatementStatus is the execution status reported by the SQL backend.
type StatementStatus string

// Statement statuses. FINISHED, FAILED and ABORTED are terminal.
const (
	StatementSubmitted StatementStatus = "SUBMITTED"
	StatementPicked    StatementStatus = "PICKED"
	StatementStarted   StatementStatus = "STARTED"
	StatementRunning   StatementStatus = "RUNNING"
	StatementFinished  StatementStatus = "FINISHED"
	StatementFailed    StatementStatus = "FAILED"
	StatementAborted   StatementStatus = "ABORTED"
)

// Terminal reports whether no further transition follows s.
func (s StatementStatus) Terminal() bool {
	return s == StatementFinished || s == StatementFailed || s == StatementAborted
}

// StatementDescription is one poll result for a submitted statement.
type StatementDescription struct {
	Status StatementStatus
	Error  string
}

// StatementAPI is the asynchronous SQL execution capability of the warehouse.
// Implemented by engine.RedshiftDataClient.
type StatementAPI interface {
	// Submit starts sql against target and returns the backend statement id.
	Submit(ctx context.Context, sql string, target ExecutionTarget) (string, error)
	// Describe returns the current status of a submitted statement.
	Describe(ctx context.Context, statementID string) (StatementDescription, error)
}

// StatementRunner runs statements to a terminal state.
// Implemented by engine.Executor.
type StatementRunner interface {
	// Execute runs one statement and blocks until it finishes or fails.
	Execute(ctx context.Context, sql string, target ExecutionTarget) error
	// ExecuteSequential runs statements in order, stopping at the first failure.
	ExecuteSequential(ctx context.Context, statements []string, target ExecutionTarget) error
	// ExecuteConcurrent runs statements with no ordering dependency concurrently.
	// The first failure cancels statements not yet submitted.
	ExecuteConcurrent(ctx context.Context, statements []string, target ExecutionTarget) error
}

// Credentials is a resolved username/password secret.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretResolver resolves an opaque credential handle.
// Implemented by engine.SecretsManagerResolver.
type SecretResolver interface {
	ResolveCredentials(ctx context.Context, secretARN string) (Credentials, error)
}
