package declarative

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbobjects/internal/domain"
)

func TestValidateTable(t *testing.T) {
	name := domain.TableName{Prefix: "events"}

	tests := []struct {
		name    string
		state   domain.TableState
		wantErr string
	}{
		{
			name:  "valid_minimal",
			state: domain.TableState{Name: name, Columns: cols(col("a", "int"))},
		},
		{
			name: "valid_key_and_compound",
			state: domain.TableState{
				Name:      name,
				Columns:   cols(domain.ColumnDefinition{Name: "a", DataType: "int", DistKey: true, SortKey: true}),
				DistStyle: domain.DistStyleKey,
			},
		},
		{
			name: "valid_distkey_with_unset_style",
			state: domain.TableState{
				Name:    name,
				Columns: cols(domain.ColumnDefinition{Name: "a", DataType: "int", DistKey: true}),
			},
		},
		{
			name:    "missing_prefix",
			state:   domain.TableState{Columns: cols(col("a", "int"))},
			wantErr: "prefix is required",
		},
		{
			name:    "no_columns",
			state:   domain.TableState{Name: name},
			wantErr: "at least one column",
		},
		{
			name:    "missing_type",
			state:   domain.TableState{Name: name, Columns: cols(col("a", ""))},
			wantErr: "tableColumns[0]: dataType is required",
		},
		{
			name:    "duplicate_name",
			state:   domain.TableState{Name: name, Columns: cols(col("a", "int"), col("A", "int"))},
			wantErr: "duplicate column name",
		},
		{
			name: "duplicate_id",
			state: domain.TableState{
				Name: name,
				Columns: cols(
					domain.ColumnDefinition{ID: "1", Name: "a", DataType: "int"},
					domain.ColumnDefinition{ID: "1", Name: "b", DataType: "int"},
				),
				UseColumnIDs: true,
			},
			wantErr: "duplicate column id",
		},
		{
			name: "two_distkeys",
			state: domain.TableState{
				Name: name,
				Columns: cols(
					domain.ColumnDefinition{Name: "a", DataType: "int", DistKey: true},
					domain.ColumnDefinition{Name: "b", DataType: "int", DistKey: true},
				),
			},
			wantErr: "at most one column",
		},
		{
			name:    "key_without_distkey",
			state:   domain.TableState{Name: name, Columns: cols(col("a", "int")), DistStyle: domain.DistStyleKey},
			wantErr: "requires a distribution key column",
		},
		{
			name: "distkey_with_even",
			state: domain.TableState{
				Name:      name,
				Columns:   cols(domain.ColumnDefinition{Name: "a", DataType: "int", DistKey: true}),
				DistStyle: domain.DistStyleEven,
			},
			wantErr: "requires KEY distribution",
		},
		{
			name:    "unknown_diststyle",
			state:   domain.TableState{Name: name, Columns: cols(col("a", "int")), DistStyle: "RANDOM"},
			wantErr: "invalid distribution style",
		},
		{
			name: "auto_with_sortkeys",
			state: domain.TableState{
				Name:      name,
				Columns:   cols(domain.ColumnDefinition{Name: "a", DataType: "int", SortKey: true}),
				SortStyle: domain.SortStyleAuto,
			},
			wantErr: "cannot have sort key columns",
		},
		{
			name:    "interleaved_without_sortkeys",
			state:   domain.TableState{Name: name, Columns: cols(col("a", "int")), SortStyle: domain.SortStyleInterleaved},
			wantErr: "INTERLEAVED sort style requires sort key columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTable(&tt.state)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			err := AsDomainError(errs)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePrivileges(t *testing.T) {
	assert.Empty(t, ValidatePrivileges([]domain.TablePrivilege{
		{TableName: "events", Actions: []string{"SELECT"}},
		{TableName: "orders", Actions: []string{"INSERT", "UPDATE"}},
	}))

	errs := ValidatePrivileges([]domain.TablePrivilege{
		{TableName: "", Actions: []string{"SELECT"}},
		{TableName: "events"},
		{TableName: "events", Actions: []string{"SELECT"}},
	})
	require.Len(t, errs, 3)
	assert.Equal(t, "tablePrivileges[0]: tableName is required", errs[0].Error())
	assert.Contains(t, errs[1].Error(), "at least one action")
	assert.Contains(t, errs[2].Error(), "duplicate table")
}

func TestAsDomainError_Empty(t *testing.T) {
	assert.NoError(t, AsDomainError(nil))
}

func TestParseResourceKind(t *testing.T) {
	for _, k := range []ResourceKind{KindTable, KindUser, KindIAMUser, KindTablePrivileges} {
		got, ok := ParseResourceKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseResourceKind("view")
	assert.False(t, ok)
}
