package domain

// TargetKind distinguishes the two ways a statement can be addressed.
type TargetKind int

const (
	// TargetWorkgroup addresses a serverless workgroup with the caller's IAM identity.
	TargetWorkgroup TargetKind = iota
	// TargetNamespace addresses a namespace with an admin credential handle.
	TargetNamespace
)

// String returns the target kind name.
func (k TargetKind) String() string {
	switch k {
	case TargetWorkgroup:
		return "workgroup"
	case TargetNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// ExecutionTarget identifies the warehouse endpoint, database, and credential
// scope statements run against. Exactly one variant is populated; use
// WorkgroupTarget or NamespaceTarget to build one.
type ExecutionTarget struct {
	Kind           TargetKind
	DatabaseName   string
	WorkgroupName  string // TargetWorkgroup only
	NamespaceName  string // TargetNamespace only
	AdminSecretARN string // TargetNamespace only; opaque credential handle
}

// WorkgroupTarget returns a workgroup-addressed target.
func WorkgroupTarget(workgroup, database string) ExecutionTarget {
	return ExecutionTarget{Kind: TargetWorkgroup, WorkgroupName: workgroup, DatabaseName: database}
}

// NamespaceTarget returns a namespace-addressed target using an admin secret.
// The Data API addresses it as a provisioned cluster: the namespace name is
// sent as the cluster identifier. Serverless namespaces must be reached
// through WorkgroupTarget instead.
func NamespaceTarget(namespace, adminSecretARN, database string) ExecutionTarget {
	return ExecutionTarget{
		Kind:           TargetNamespace,
		NamespaceName:  namespace,
		AdminSecretARN: adminSecretARN,
		DatabaseName:   database,
	}
}

// Identity returns the endpoint name the target resolves to, independent of
// the database. Used in physical identifiers and replacement checks.
func (t ExecutionTarget) Identity() string {
	if t.Kind == TargetNamespace {
		return t.NamespaceName
	}
	return t.WorkgroupName
}

// SameAs reports whether two targets address the same endpoint and database.
// Any difference forces replacement of the managed object.
func (t ExecutionTarget) SameAs(other ExecutionTarget) bool {
	return t.Kind == other.Kind &&
		t.Identity() == other.Identity() &&
		t.DatabaseName == other.DatabaseName
}

// Validate checks that exactly one variant is fully populated.
func (t ExecutionTarget) Validate() error {
	if t.DatabaseName == "" {
		return ErrValidation("databaseName is required")
	}
	switch t.Kind {
	case TargetWorkgroup:
		if t.WorkgroupName == "" {
			return ErrValidation("workGroupName is required")
		}
		if t.NamespaceName != "" || t.AdminSecretARN != "" {
			return ErrValidation("workgroup target must not set namespaceName or adminUserArn")
		}
	case TargetNamespace:
		if t.NamespaceName == "" || t.AdminSecretARN == "" {
			return ErrValidation("namespace target requires namespaceName and adminUserArn")
		}
		if t.WorkgroupName != "" {
			return ErrValidation("namespace target must not set workGroupName")
		}
	default:
		return ErrValidation("unknown target kind %d", t.Kind)
	}
	return nil
}
