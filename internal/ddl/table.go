// Package ddl builds warehouse DDL statements for tables, users, and grants.
package ddl

import (
	"fmt"
	"strings"

	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
)

// TableCreation is the statement set that brings a table into existence.
// ColumnComments have no ordering dependency between each other but must
// run after Create; TableComment runs last.
type TableCreation struct {
	Create         string
	ColumnComments []string
	TableComment   string // empty when the table has no comment
}

// Statements returns the creation statements in execution order.
func (c *TableCreation) Statements() []string {
	stmts := make([]string, 0, len(c.ColumnComments)+2)
	stmts = append(stmts, c.Create)
	stmts = append(stmts, c.ColumnComments...)
	if c.TableComment != "" {
		stmts = append(stmts, c.TableComment)
	}
	return stmts
}

// CreateTableStatements returns the statements creating table with the given state:
// CREATE TABLE <table> (<col> <type> [ENCODE <enc>], ...) [DISTSTYLE s] [DISTKEY(c)] [<style> SORTKEY(c, ...)]
// followed by one COMMENT ON COLUMN per commented column and COMMENT ON TABLE.
func CreateTableStatements(table string, state *domain.TableState) (*TableCreation, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("invalid table name: %w", err)
	}
	if len(state.Columns) == 0 {
		return nil, fmt.Errorf("at least one column is required")
	}

	colDefs := make([]string, 0, len(state.Columns))
	for _, c := range state.Columns {
		def, err := columnDefinition(c)
		if err != nil {
			return nil, err
		}
		colDefs = append(colDefs, def)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (%s)", table, strings.Join(colDefs, ", "))
	if state.DistStyle != "" {
		fmt.Fprintf(&b, " DISTSTYLE %s", strings.ToUpper(string(state.DistStyle)))
	}
	if key, ok := state.DistKeyColumn(); ok {
		fmt.Fprintf(&b, " DISTKEY(%s)", key.Name)
	}
	if sortCols := state.SortKeyColumns(); len(sortCols) > 0 {
		fmt.Fprintf(&b, " %s SORTKEY(%s)", state.EffectiveSortStyle(), columnNames(sortCols))
	}

	creation := &TableCreation{Create: b.String()}
	for _, c := range state.Columns {
		if c.Comment != "" {
			creation.ColumnComments = append(creation.ColumnComments, CommentOnColumn(table, c.Name, c.Comment))
		}
	}
	if state.TableComment != "" {
		creation.TableComment = CommentOnTable(table, state.TableComment)
	}
	return creation, nil
}

// DropTable returns: DROP TABLE <table>.
func DropTable(table string) (string, error) {
	if err := ValidateTableName(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return "DROP TABLE " + table, nil
}

// CommentOnColumn returns: COMMENT ON COLUMN <table>.<column> IS '<comment>'|NULL.
func CommentOnColumn(table, column, comment string) string {
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", table, column, commentLiteral(comment))
}

// CommentOnTable returns: COMMENT ON TABLE <table> IS '<comment>'|NULL.
func CommentOnTable(table, comment string) string {
	return fmt.Sprintf("COMMENT ON TABLE %s IS %s", table, commentLiteral(comment))
}

// AlterTableStatements translates an in-place diff into ordered statements:
// deletions, additions, VARCHAR widenings, one batched encoding statement, comments,
// renames, then distribution style, distribution key, sort key, table comment.
// Column statements before the rename step address columns by their old name.
func AlterTableStatements(table string, diff *declarative.TableDiff) ([]string, error) {
	if diff.Replace {
		return nil, fmt.Errorf("diff requires replacement: %s", diff.ReplaceReason)
	}
	if len(diff.UnsupportedTypeChanges) > 0 {
		ch := diff.UnsupportedTypeChanges[0]
		return nil, fmt.Errorf("column %s type cannot change from %s to %s in place", ch.Old.Name, ch.Old.DataType, ch.New.DataType)
	}
	if err := ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("invalid table name: %w", err)
	}

	var stmts []string
	for _, c := range diff.Deletions {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, c.Name))
	}
	for _, c := range diff.Additions {
		def, err := columnDefinition(c)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", table, def))
		if c.Comment != "" {
			stmts = append(stmts, CommentOnColumn(table, c.Name, c.Comment))
		}
	}
	for _, ch := range diff.TypeChanges {
		if err := ValidateColumnType(ch.New.DataType); err != nil {
			return nil, fmt.Errorf("invalid column type for %q: %w", ch.New.Name, err)
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, ch.Old.Name, ch.New.DataType))
	}
	if len(diff.EncodingChanges) > 0 {
		clauses := make([]string, 0, len(diff.EncodingChanges))
		for _, ch := range diff.EncodingChanges {
			if err := ValidateEncoding(ch.New.Encoding); err != nil {
				return nil, fmt.Errorf("invalid encoding for %q: %w", ch.New.Name, err)
			}
			enc := ch.New.Encoding
			if enc == "" {
				enc = "AUTO"
			}
			clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s ENCODE %s", ch.Old.Name, enc))
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s %s", table, strings.Join(clauses, ", ")))
	}
	for _, ch := range diff.CommentChanges {
		stmts = append(stmts, CommentOnColumn(table, ch.Old.Name, ch.New.Comment))
	}
	for _, ch := range diff.Renames {
		if err := ValidateIdentifier(ch.New.Name); err != nil {
			return nil, fmt.Errorf("invalid column name %q: %w", ch.New.Name, err)
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", table, ch.Old.Name, ch.New.Name))
	}

	if diff.DistStyle != "" {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER DISTSTYLE %s", table, diff.DistStyle))
	}
	if diff.DistKey != "" {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER DISTKEY %s", table, diff.DistKey))
	}
	if sk := diff.SortKey; sk != nil {
		switch sk.Style {
		case domain.SortStyleCompound:
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COMPOUND SORTKEY(%s)", table, strings.Join(sk.Columns, ", ")))
		case domain.SortStyleAuto:
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER SORTKEY AUTO", table))
		default:
			return nil, fmt.Errorf("sort style %s cannot be altered in place", sk.Style)
		}
	}
	if diff.TableComment != nil {
		stmts = append(stmts, CommentOnTable(table, *diff.TableComment))
	}
	return stmts, nil
}

// columnDefinition renders "<name> <type> [ENCODE <enc>]".
func columnDefinition(c domain.ColumnDefinition) (string, error) {
	if err := ValidateIdentifier(c.Name); err != nil {
		return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
	}
	if err := ValidateColumnType(c.DataType); err != nil {
		return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
	}
	if err := ValidateEncoding(c.Encoding); err != nil {
		return "", fmt.Errorf("invalid encoding for %q: %w", c.Name, err)
	}
	def := c.Name + " " + c.DataType
	if c.Encoding != "" {
		def += " ENCODE " + c.Encoding
	}
	return def, nil
}

func columnNames(cols []domain.ColumnDefinition) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
