package declarative

import (
	"fmt"
	"strings"

	"dbobjects/internal/domain"
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	Path    string // e.g. "tableColumns[2]" or "tablePrivileges[events]"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidateTable checks the structural rules of a table state.
func ValidateTable(state *domain.TableState) []ValidationError {
	var errs []ValidationError
	useIDs := bool(state.UseColumnIDs)

	if state.Name.Prefix == "" {
		addErr(&errs, "tableName", "prefix is required")
	}
	if len(state.Columns) == 0 {
		addErr(&errs, "tableColumns", "at least one column is required")
	}

	names := make(map[string]bool, len(state.Columns))
	keys := make(map[string]bool, len(state.Columns))
	distKeys := 0
	for i, c := range state.Columns {
		path := fmt.Sprintf("tableColumns[%d]", i)
		if c.Name == "" {
			addErr(&errs, path, "name is required")
		}
		if c.DataType == "" {
			addErr(&errs, path, "dataType is required")
		}
		lower := strings.ToLower(c.Name)
		if names[lower] {
			addErr(&errs, path, "duplicate column name %q", c.Name)
		}
		names[lower] = true
		if useIDs && c.ID != "" {
			if keys["id:"+c.ID] {
				addErr(&errs, path, "duplicate column id %q", c.ID)
			}
			keys["id:"+c.ID] = true
		}
		if c.DistKey {
			distKeys++
		}
	}
	if distKeys > 1 {
		addErr(&errs, "tableColumns", "at most one column can be the distribution key, got %d", distKeys)
	}

	distStyle := domain.DistStyle(strings.ToUpper(string(state.DistStyle)))
	if !distStyle.Valid() {
		addErr(&errs, "distStyle", "invalid distribution style %q", state.DistStyle)
	}
	if distStyle == domain.DistStyleKey && distKeys == 0 {
		addErr(&errs, "distStyle", "KEY distribution requires a distribution key column")
	}
	if distKeys > 0 && distStyle != "" && distStyle != domain.DistStyleKey {
		addErr(&errs, "distStyle", "a distribution key column requires KEY distribution, got %s", distStyle)
	}

	if !domain.SortStyle(strings.ToUpper(string(state.SortStyle))).Valid() {
		addErr(&errs, "sortStyle", "invalid sort style %q", state.SortStyle)
	}
	sortKeys := len(state.SortKeyColumns())
	switch state.EffectiveSortStyle() {
	case domain.SortStyleAuto:
		if sortKeys > 0 {
			addErr(&errs, "sortStyle", "AUTO sort style cannot have sort key columns")
		}
	case domain.SortStyleCompound, domain.SortStyleInterleaved:
		if sortKeys == 0 {
			addErr(&errs, "sortStyle", "%s sort style requires sort key columns", state.EffectiveSortStyle())
		}
	}
	return errs
}

// ValidatePrivileges checks the shape of a table privilege list. Action names
// are checked by the statement builder.
func ValidatePrivileges(privileges []domain.TablePrivilege) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(privileges))
	for i, p := range privileges {
		path := fmt.Sprintf("tablePrivileges[%d]", i)
		if p.TableName == "" {
			addErr(&errs, path, "tableName is required")
		} else if seen[p.TableName] {
			addErr(&errs, path, "duplicate table %q", p.TableName)
		}
		seen[p.TableName] = true
		if len(p.Actions) == 0 {
			addErr(&errs, path, "at least one action is required")
		}
	}
	return errs
}

// AsDomainError folds validation problems into a single domain.ValidationError.
// Returns nil when errs is empty.
func AsDomainError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return domain.ErrValidation("%s", strings.Join(msgs, "; "))
}

func addErr(errs *[]ValidationError, path, msg string, args ...any) {
	*errs = append(*errs, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(msg, args...),
	})
}
