package declarative

// ResourceKind identifies a type of managed warehouse object.
type ResourceKind int

// Resource kind constants, one per event handler.
const (
	KindTable ResourceKind = iota
	KindUser
	KindIAMUser
	KindTablePrivileges
)

// String returns the handler name for the resource kind.
func (k ResourceKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindUser:
		return "user"
	case KindIAMUser:
		return "iam-user"
	case KindTablePrivileges:
		return "user-table-privileges"
	default:
		return "unknown"
	}
}

// ParseResourceKind maps a handler name to its kind.
func ParseResourceKind(handler string) (ResourceKind, bool) {
	for _, k := range []ResourceKind{KindTable, KindUser, KindIAMUser, KindTablePrivileges} {
		if k.String() == handler {
			return k, true
		}
	}
	return 0, false
}

// Operation represents a planned change type.
type Operation int

const (
	// OpCreate indicates a new incarnation is created.
	OpCreate Operation = iota
	// OpUpdate indicates the live object is altered in place.
	OpUpdate
	// OpReplace indicates a new incarnation replaces the live one.
	OpReplace
	// OpDelete indicates the live object is dropped.
	OpDelete
	// OpNoop indicates an update that needs no statements.
	OpNoop
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	case OpNoop:
		return "no-op"
	default:
		return "unknown"
	}
}
