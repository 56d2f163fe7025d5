package ddl

import (
	"fmt"
	"regexp"
)

// redactedPassword replaces password literals in statements that are logged or planned.
const redactedPassword = "PASSWORD '***'"

var passwordLiteralRe = regexp.MustCompile(`PASSWORD '(?:[^']|'')*'`)

// CreateUser returns: CREATE USER "<name>" PASSWORD '<password>'.
func CreateUser(name, password string) (string, error) {
	if err := ValidateUsername(name); err != nil {
		return "", fmt.Errorf("invalid username: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return fmt.Sprintf("CREATE USER %s PASSWORD %s", QuoteIdentifier(name), QuoteLiteral(password)), nil
}

// CreateIAMUser returns: CREATE USER "<name>" PASSWORD DISABLE.
// The name carries its IAM: or IAMR: prefix.
func CreateIAMUser(name string) (string, error) {
	if err := ValidateUsername(name); err != nil {
		return "", fmt.Errorf("invalid username: %w", err)
	}
	return fmt.Sprintf("CREATE USER %s PASSWORD DISABLE", QuoteIdentifier(name)), nil
}

// AlterUserPassword returns: ALTER USER "<name>" PASSWORD '<password>'.
func AlterUserPassword(name, password string) (string, error) {
	if err := ValidateUsername(name); err != nil {
		return "", fmt.Errorf("invalid username: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return fmt.Sprintf("ALTER USER %s PASSWORD %s", QuoteIdentifier(name), QuoteLiteral(password)), nil
}

// DropUser returns: DROP USER "<name>".
func DropUser(name string) (string, error) {
	if err := ValidateUsername(name); err != nil {
		return "", fmt.Errorf("invalid username: %w", err)
	}
	return "DROP USER " + QuoteIdentifier(name), nil
}

// Redact masks password literals so a statement can be logged or shown in a plan.
func Redact(stmt string) string {
	return passwordLiteralRe.ReplaceAllLiteralString(stmt, redactedPassword)
}
