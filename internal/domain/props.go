package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexBool decodes from a JSON boolean or from the strings "true"/"false".
// Orchestrators stringify every scalar property, so both forms arrive.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(raw []byte) error {
	if len(raw) == 0 || string(raw) == "null" {
		*b = false
		return nil
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		*b = FlexBool(boolVal)
		return nil
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err != nil {
		return fmt.Errorf("expected boolean or string, got %s", string(raw))
	}
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true":
		*b = true
	case "false", "":
		*b = false
	default:
		return fmt.Errorf("invalid boolean string %q", strVal)
	}
	return nil
}

// TargetProperties are the properties common to every handler that address
// the warehouse. Exactly one of WorkGroupName or NamespaceName is set.
type TargetProperties struct {
	Handler       string `json:"handler"`
	WorkGroupName string `json:"workGroupName,omitempty"`
	NamespaceName string `json:"namespaceName,omitempty"`
	AdminUserARN  string `json:"adminUserArn,omitempty"`
	DatabaseName  string `json:"databaseName"`
}

// Target converts the properties into a validated ExecutionTarget.
func (p TargetProperties) Target() (ExecutionTarget, error) {
	var t ExecutionTarget
	switch {
	case p.WorkGroupName != "" && p.NamespaceName != "":
		return t, ErrValidation("exactly one of workGroupName or namespaceName must be set")
	case p.NamespaceName != "":
		t = NamespaceTarget(p.NamespaceName, p.AdminUserARN, p.DatabaseName)
	default:
		t = WorkgroupTarget(p.WorkGroupName, p.DatabaseName)
	}
	if err := t.Validate(); err != nil {
		return ExecutionTarget{}, err
	}
	return t, nil
}

// TableProperties are the resource properties of the table handler.
type TableProperties struct {
	TargetProperties
	TableState
}

// UserProperties are the resource properties of the password user handler.
type UserProperties struct {
	TargetProperties
	Username          string `json:"username"`
	PasswordSecretARN string `json:"passwordSecretArn"`
}

// IAMUserProperties are the resource properties of the IAM user handler.
// Username is already qualified (IAM:<user> or IAMR:<role>).
type IAMUserProperties struct {
	TargetProperties
	Username string `json:"username"`
}

// TablePrivilege grants a set of actions on one table.
type TablePrivilege struct {
	TableName string   `json:"tableName"`
	Actions   []string `json:"actions"`
}

// PrivilegesProperties are the resource properties of the table privileges handler.
type PrivilegesProperties struct {
	TargetProperties
	Username        string           `json:"username"`
	TablePrivileges []TablePrivilege `json:"tablePrivileges"`
}

// DecodeProperties decodes raw resource properties into v.
func DecodeProperties(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return ErrValidation("resource properties are required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrValidation("decode resource properties: %v", err)
	}
	return nil
}
