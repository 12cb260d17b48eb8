// Package policy assembles the least-privilege IAM policy documents attached
// to the deployment role. Assembly is a pure function of the environment
// configuration: same input, same documents, statement for statement.
package policy

import (
	"encoding/json"
	"fmt"
)

// Documents attach as inline role policies, which IAM caps at 10240
// characters. Rendering holds them to the stricter 6144-character
// customer-managed-policy bound so a document can later be promoted to a
// managed policy without splitting.
const maxDocumentSize = 6144

// Effect is the allow/deny disposition of a statement.
type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// Statement is one allow/deny rule scoping a set of actions to a set of
// resource patterns.
type Statement struct {
	Sid        string
	Effect     Effect
	Actions    []string
	Resources  []string
	Conditions map[string]map[string]string
}

// Document is a named IAM policy document.
type Document struct {
	Name       string
	Statements []Statement
}

type statementJSON struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    Effect                       `json:"Effect"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

type documentJSON struct {
	Version   string          `json:"Version"`
	Statement []statementJSON `json:"Statement"`
}

// Render serializes the document to IAM policy JSON. It fails when the
// rendered document exceeds the provider's size limit.
func (d Document) Render() (string, error) {
	doc := documentJSON{Version: "2012-10-17"}
	for _, s := range d.Statements {
		doc.Statement = append(doc.Statement, statementJSON{
			Sid:       s.Sid,
			Effect:    s.Effect,
			Action:    s.Actions,
			Resource:  s.Resources,
			Condition: s.Conditions,
		})
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("rendering policy %s: %w", d.Name, err)
	}
	if len(b) > maxDocumentSize {
		return "", fmt.Errorf("policy %s renders to %d bytes, over the %d byte limit", d.Name, len(b), maxDocumentSize)
	}
	return string(b), nil
}

// regionCondition scopes a wildcard-resource statement to a single region so
// the blast radius of actions without ARN support stays auditable.
func regionCondition(region string) map[string]map[string]string {
	return map[string]map[string]string{
		"StringEquals": {"aws:RequestedRegion": region},
	}
}
