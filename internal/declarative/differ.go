package declarative

import (
	"regexp"
	"strconv"
	"strings"

	"dbobjects/internal/domain"
)

// TableSpec is one side of a table comparison: where the table lives and
// what it should look like.
type TableSpec struct {
	Target domain.ExecutionTarget
	State  domain.TableState
}

// ColumnChange pairs the old and new definition of the same column.
type ColumnChange struct {
	Old domain.ColumnDefinition
	New domain.ColumnDefinition
}

// SortKeyChange is the sort key alteration to apply in place.
type SortKeyChange struct {
	Style   domain.SortStyle
	Columns []string // new column names; empty for AUTO
}

// TableDiff is the classified difference between two table states.
// When Replace is set the alteration fields are left empty.
type TableDiff struct {
	Replace       bool
	ReplaceReason string

	Deletions       []domain.ColumnDefinition // old definitions
	Additions       []domain.ColumnDefinition // new definitions
	TypeChanges     []ColumnChange            // VARCHAR widenings only
	EncodingChanges []ColumnChange
	CommentChanges  []ColumnChange
	Renames         []ColumnChange

	// UnsupportedTypeChanges are type changes the warehouse cannot apply in
	// place. A diff carrying any is rejected before statements are built.
	UnsupportedTypeChanges []ColumnChange

	DistStyle    domain.DistStyle // non-empty when ALTER DISTSTYLE is needed
	DistKey      string           // non-empty when ALTER DISTKEY is needed
	SortKey      *SortKeyChange
	TableComment *string // non-nil when the table comment changed; "" clears it
}

// IsEmpty reports whether the diff requires no statements at all.
func (d *TableDiff) IsEmpty() bool {
	return !d.Replace &&
		len(d.Deletions) == 0 &&
		len(d.Additions) == 0 &&
		len(d.TypeChanges) == 0 &&
		len(d.UnsupportedTypeChanges) == 0 &&
		len(d.EncodingChanges) == 0 &&
		len(d.CommentChanges) == 0 &&
		len(d.Renames) == 0 &&
		d.DistStyle == "" &&
		d.DistKey == "" &&
		d.SortKey == nil &&
		d.TableComment == nil
}

// DiffTable compares the previous and desired table and classifies the
// difference as an in-place alteration or a replacement. Replacement checks
// run first, in order, and the first match wins.
func DiffTable(old, new TableSpec) *TableDiff {
	useIDs := bool(new.State.UseColumnIDs)

	if !old.Target.SameAs(new.Target) {
		return replace("target changed")
	}
	if old.State.Name.Prefix != new.State.Name.Prefix {
		return replace("table name prefix changed")
	}

	oldDist := normalizeUpper(string(old.State.DistStyle))
	newDist := normalizeUpper(string(new.State.DistStyle))
	if (oldDist == "") != (newDist == "") {
		return replace("distribution style added or removed")
	}

	oldKey, oldHasKey := old.State.DistKeyColumn()
	newKey, newHasKey := new.State.DistKeyColumn()
	if oldHasKey != newHasKey {
		return replace("distribution key added or removed")
	}

	oldSortStyle := old.State.EffectiveSortStyle()
	newSortStyle := new.State.EffectiveSortStyle()
	newSortCols := new.State.SortKeyColumns()
	sortChanged := oldSortStyle != newSortStyle ||
		!sameColumnSequence(old.State.SortKeyColumns(), newSortCols, useIDs)
	if sortChanged && newSortStyle == domain.SortStyleInterleaved {
		return replace("interleaved sort key cannot be altered in place")
	}

	diff := &TableDiff{}
	diffColumns(diff, old.State.Columns, new.State.Columns, useIDs)

	if oldDist != newDist {
		diff.DistStyle = domain.DistStyle(newDist)
	}
	if oldHasKey && newHasKey && !domain.SameColumn(oldKey, newKey, useIDs) {
		diff.DistKey = newKey.Name
	}
	if sortChanged {
		change := &SortKeyChange{Style: newSortStyle}
		if newSortStyle == domain.SortStyleCompound {
			for _, c := range newSortCols {
				change.Columns = append(change.Columns, c.Name)
			}
		}
		diff.SortKey = change
	}
	if old.State.TableComment != new.State.TableComment {
		comment := new.State.TableComment
		diff.TableComment = &comment
	}
	return diff
}

func replace(reason string) *TableDiff {
	return &TableDiff{Replace: true, ReplaceReason: reason}
}

// diffColumns matches columns by identity key and records deletions,
// additions and per-column changes in column order.
func diffColumns(diff *TableDiff, oldCols, newCols []domain.ColumnDefinition, useIDs bool) {
	for _, oc := range oldCols {
		if _, ok := findColumn(oc, newCols, useIDs); !ok {
			diff.Deletions = append(diff.Deletions, oc)
		}
	}

	for _, nc := range newCols {
		oc, ok := findOldColumn(nc, oldCols, useIDs)
		if !ok {
			diff.Additions = append(diff.Additions, nc)
			continue
		}
		change := ColumnChange{Old: oc, New: nc}
		switch {
		case sameDataType(oc.DataType, nc.DataType):
		case varcharWidened(oc.DataType, nc.DataType):
			diff.TypeChanges = append(diff.TypeChanges, change)
		default:
			diff.UnsupportedTypeChanges = append(diff.UnsupportedTypeChanges, change)
		}
		if !strings.EqualFold(oc.Encoding, nc.Encoding) {
			diff.EncodingChanges = append(diff.EncodingChanges, change)
		}
		if oc.Comment != nc.Comment {
			diff.CommentChanges = append(diff.CommentChanges, change)
		}
		if oc.Name != nc.Name {
			diff.Renames = append(diff.Renames, change)
		}
	}
}

// findColumn returns the new column matching old.
func findColumn(old domain.ColumnDefinition, cols []domain.ColumnDefinition, useIDs bool) (domain.ColumnDefinition, bool) {
	for _, c := range cols {
		if domain.SameColumn(old, c, useIDs) {
			return c, true
		}
	}
	return domain.ColumnDefinition{}, false
}

// findOldColumn returns the old column matching new.
func findOldColumn(new domain.ColumnDefinition, cols []domain.ColumnDefinition, useIDs bool) (domain.ColumnDefinition, bool) {
	for _, c := range cols {
		if domain.SameColumn(c, new, useIDs) {
			return c, true
		}
	}
	return domain.ColumnDefinition{}, false
}

func sameColumnSequence(old, new []domain.ColumnDefinition, useIDs bool) bool {
	if len(old) != len(new) {
		return false
	}
	for i := range old {
		if !domain.SameColumn(old[i], new[i], useIDs) {
			return false
		}
	}
	return true
}

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Character types default to 256 bytes; MAX is 65535.
const (
	defaultVarcharLen = 256
	maxVarcharLen     = 65535
)

var varcharRe = regexp.MustCompile(`^(VARCHAR|CHARACTER VARYING|NVARCHAR|TEXT)(?:\((\d+|MAX)\))?$`)

// normalizeType upper-cases a type name and collapses its whitespace so that
// "decimal(10, 2)" and "DECIMAL(10,2)" compare equal.
func normalizeType(dataType string) string {
	t := strings.Join(strings.Fields(strings.ToUpper(dataType)), " ")
	t = strings.ReplaceAll(t, " (", "(")
	t = strings.ReplaceAll(t, "( ", "(")
	t = strings.ReplaceAll(t, " )", ")")
	return strings.ReplaceAll(t, ", ", ",")
}

// varcharLength returns the declared length of a variable-length character type.
func varcharLength(dataType string) (int, bool) {
	m := varcharRe.FindStringSubmatch(normalizeType(dataType))
	if m == nil {
		return 0, false
	}
	switch m[2] {
	case "":
		return defaultVarcharLen, true
	case "MAX":
		return maxVarcharLen, true
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

func sameDataType(old, new string) bool {
	oldLen, oldOK := varcharLength(old)
	newLen, newOK := varcharLength(new)
	if oldOK && newOK {
		return oldLen == newLen
	}
	return normalizeType(old) == normalizeType(new)
}

// varcharWidened reports whether the change only increases the length of a
// variable-length character column, the one type change ALTER COLUMN accepts.
func varcharWidened(old, new string) bool {
	oldLen, oldOK := varcharLength(old)
	newLen, newOK := varcharLength(new)
	return oldOK && newOK && newLen > oldLen
}
