package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows alphanumerics, underscores and dollar signs, starting
// with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

// columnTypeRe matches warehouse type names, optionally with a length or
// precision/scale parameter.
// Accepted forms:
//
//	WORD [WORD...]               → INT, BOOLEAN, DOUBLE PRECISION, TIMESTAMP WITH TIME ZONE
//	WORD(digits|MAX)             → VARCHAR(256), CHAR(10), VARCHAR(MAX)
//	WORD(digits, digits)         → DECIMAL(10,2), NUMERIC(18,4)
//
// Case-insensitive.
var columnTypeRe = regexp.MustCompile(`(?i)^[A-Z][A-Z0-9_ ]*(?:\(\s*(?:\d+|MAX)\s*(?:,\s*\d+\s*)?\))?$`)

// encodingRe matches compression encoding names such as AZ64, ZSTD, BYTEDICT, RAW.
var encodingRe = regexp.MustCompile(`(?i)^[A-Z][A-Z0-9]*$`)

// maxIdentifierLen is the maximum length allowed for a warehouse identifier.
const maxIdentifierLen = 127

// maxColumnTypeLen is the maximum length allowed for a column type string.
const maxColumnTypeLen = 64

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 127 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_$]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_$]*")
	}
	return nil
}

// ValidateTableName checks a table name that is either bare or schema-qualified.
func ValidateTableName(name string) error {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return fmt.Errorf("table name %q has too many parts", name)
	}
	for _, p := range parts {
		if err := ValidateIdentifier(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUsername checks a database user name. IAM-mapped users carry an
// IAM: or IAMR: prefix which is accepted here.
func ValidateUsername(name string) error {
	if name == "" {
		return fmt.Errorf("username is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("username must be at most %d characters", maxIdentifierLen)
	}
	if strings.ContainsAny(name, "\"';\\\x00") {
		return fmt.Errorf("username contains invalid characters")
	}
	return nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
//
// Always quotes unconditionally; the caller should validate first if needed.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// commentLiteral renders a comment value, using NULL for a cleared comment.
func commentLiteral(value string) string {
	if value == "" {
		return "NULL"
	}
	return QuoteLiteral(value)
}

// ValidateColumnType checks that typeName is a safe column type:
//   - Non-empty
//   - At most 64 characters
//   - Matches the allowed type pattern
//   - Does not contain SQL injection patterns (semicolons, comments, etc.)
func ValidateColumnType(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("column type is required")
	}
	if len(typeName) > maxColumnTypeLen {
		return fmt.Errorf("column type must be at most %d characters", maxColumnTypeLen)
	}
	// Reject obvious injection patterns before regex check
	if strings.ContainsAny(typeName, ";-'\"\\") {
		return fmt.Errorf("column type contains invalid characters")
	}
	if !columnTypeRe.MatchString(typeName) {
		return fmt.Errorf("column type %q is not a recognized type pattern", typeName)
	}
	return nil
}

// ValidateEncoding checks a column compression encoding name. Empty means
// the warehouse default.
func ValidateEncoding(encoding string) error {
	if encoding == "" {
		return nil
	}
	if !encodingRe.MatchString(encoding) {
		return fmt.Errorf("encoding %q is not a recognized encoding name", encoding)
	}
	return nil
}
