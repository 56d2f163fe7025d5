package domain

import "strings"

// DistStyle is a table distribution style.
type DistStyle string

// Distribution styles. The zero value means the style is not set.
const (
	DistStyleEven DistStyle = "EVEN"
	DistStyleKey  DistStyle = "KEY"
	DistStyleAll  DistStyle = "ALL"
	DistStyleAuto DistStyle = "AUTO"
)

// Valid reports whether s is empty or a known distribution style.
func (s DistStyle) Valid() bool {
	switch s {
	case "", DistStyleEven, DistStyleKey, DistStyleAll, DistStyleAuto:
		return true
	}
	return false
}

// SortStyle is a table sort key style.
type SortStyle string

// Sort styles. The zero value is resolved by TableState.EffectiveSortStyle.
const (
	SortStyleCompound    SortStyle = "COMPOUND"
	SortStyleInterleaved SortStyle = "INTERLEAVED"
	SortStyleAuto        SortStyle = "AUTO"
)

// Valid reports whether s is empty or a known sort style.
func (s SortStyle) Valid() bool {
	switch s {
	case "", SortStyleCompound, SortStyleInterleaved, SortStyleAuto:
		return true
	}
	return false
}

// NameSuffixPolicy controls how a table's physical name is derived from its prefix.
type NameSuffixPolicy int

const (
	// SuffixFixed uses the prefix as the table name.
	SuffixFixed NameSuffixPolicy = iota
	// SuffixFromRequestID appends a prefix of the request id to the name.
	SuffixFromRequestID
)

// ColumnDefinition is one column of a table state snapshot.
// It is never mutated once decoded from an event.
type ColumnDefinition struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	DataType string   `json:"dataType"`
	DistKey  FlexBool `json:"distKey,omitempty"`
	SortKey  FlexBool `json:"sortKey,omitempty"`
	Encoding string   `json:"encoding,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}

// TableName carries the name prefix and suffix generation flag.
type TableName struct {
	Prefix         string   `json:"prefix"`
	GenerateSuffix FlexBool `json:"generateSuffix"`
}

// SuffixPolicy returns the naming policy encoded by GenerateSuffix.
func (n TableName) SuffixPolicy() NameSuffixPolicy {
	if n.GenerateSuffix {
		return SuffixFromRequestID
	}
	return SuffixFixed
}

// TableState is the desired (or previous) state of a managed table.
type TableState struct {
	Name         TableName          `json:"tableName"`
	Columns      []ColumnDefinition `json:"tableColumns"`
	DistStyle    DistStyle          `json:"distStyle,omitempty"`
	SortStyle    SortStyle          `json:"sortStyle,omitempty"`
	TableComment string             `json:"tableComment,omitempty"`
	UseColumnIDs FlexBool           `json:"useColumnIds,omitempty"`
}

// DistKeyColumn returns the column flagged as distribution key, if any.
func (s *TableState) DistKeyColumn() (ColumnDefinition, bool) {
	for _, c := range s.Columns {
		if c.DistKey {
			return c, true
		}
	}
	return ColumnDefinition{}, false
}

// SortKeyColumns returns the columns flagged as sort keys, in column order.
func (s *TableState) SortKeyColumns() []ColumnDefinition {
	var cols []ColumnDefinition
	for _, c := range s.Columns {
		if c.SortKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// EffectiveSortStyle resolves an unset sort style: COMPOUND when sort key
// columns exist, AUTO otherwise.
func (s *TableState) EffectiveSortStyle() SortStyle {
	if s.SortStyle != "" {
		return SortStyle(strings.ToUpper(string(s.SortStyle)))
	}
	if len(s.SortKeyColumns()) > 0 {
		return SortStyleCompound
	}
	return SortStyleAuto
}

// SameColumn reports whether old and new denote the same column. When
// useIDs is set and the old column carries an id, ids are compared;
// otherwise names are.
func SameColumn(old, new ColumnDefinition, useIDs bool) bool {
	if useIDs && old.ID != "" {
		return old.ID == new.ID
	}
	return old.Name == new.Name
}
