package ddl

import (
	"fmt"
	"strings"
)

// validTableActions are the table privileges that can be granted.
var validTableActions = map[string]bool{
	"SELECT":     true,
	"INSERT":     true,
	"UPDATE":     true,
	"DELETE":     true,
	"DROP":       true,
	"REFERENCES": true,
	"ALL":        true,
}

// ValidateActions checks that actions is a non-empty list of known table privileges.
func ValidateActions(actions []string) error {
	if len(actions) == 0 {
		return fmt.Errorf("at least one action is required")
	}
	for _, a := range actions {
		if !validTableActions[strings.ToUpper(a)] {
			return fmt.Errorf("unknown table privilege %q", a)
		}
	}
	return nil
}

// GrantOnTable returns: GRANT <a>, <b> ON "<table>" TO "<user>".
func GrantOnTable(table string, actions []string, user string) (string, error) {
	target, privs, err := privilegeParts(table, actions, user)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("GRANT %s ON %s TO %s", privs, target, QuoteIdentifier(user)), nil
}

// RevokeOnTable returns: REVOKE <a>, <b> ON "<table>" FROM "<user>".
func RevokeOnTable(table string, actions []string, user string) (string, error) {
	target, privs, err := privilegeParts(table, actions, user)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("REVOKE %s ON %s FROM %s", privs, target, QuoteIdentifier(user)), nil
}

func privilegeParts(table string, actions []string, user string) (string, string, error) {
	if err := ValidateTableName(table); err != nil {
		return "", "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateUsername(user); err != nil {
		return "", "", fmt.Errorf("invalid username: %w", err)
	}
	if err := ValidateActions(actions); err != nil {
		return "", "", err
	}
	upper := make([]string, len(actions))
	for i, a := range actions {
		upper[i] = strings.ToUpper(a)
	}
	return quoteTableName(table), strings.Join(upper, ", "), nil
}

// quoteTableName quotes each part of a bare or schema-qualified table name.
func quoteTableName(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
