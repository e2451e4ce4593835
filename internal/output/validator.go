package output

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/identity"
	"github.com/hupe1980/graphyaml/internal/yamlutil"
)

// IdentityField is the object field holding the identity of the object a
// document describes.
const IdentityField = "m_FileID"

// ValidationSeverity indicates the severity of a validation finding.
type ValidationSeverity int

const (
	// SeverityError means the archive is invalid.
	SeverityError ValidationSeverity = iota
	// SeverityWarning means the archive may be problematic.
	SeverityWarning
)

// String returns the severity name.
func (s ValidationSeverity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// ValidationFinding is a single validation issue.
type ValidationFinding struct {
	Severity ValidationSeverity
	Field    string
	Message  string
}

// Error implements the error interface.
func (f *ValidationFinding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Field, f.Message)
}

// ValidationResult holds all findings from a validation run together with
// what was checked.
type ValidationResult struct {
	Findings []ValidationFinding

	Documents     int
	References    int
	NilReferences int
}

// Errors returns only error-severity findings.
func (r *ValidationResult) Errors() []ValidationFinding {
	return r.filter(SeverityError)
}

// Warnings returns only warning-severity findings.
func (r *ValidationResult) Warnings() []ValidationFinding {
	return r.filter(SeverityWarning)
}

// HasErrors returns true if any error-severity findings exist.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings returns true if any warning-severity findings exist.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

func (r *ValidationResult) filter(s ValidationSeverity) []ValidationFinding {
	var result []ValidationFinding

	for _, f := range r.Findings {
		if f.Severity == s {
			result = append(result, f)
		}
	}

	return result
}

// ValidateArchive checks a multi-document YAML archive.
//
// Every document must be a mapping with a single type tag key whose value
// is the object's field map. No identity may be described by more than one
// document, and every {fileId: "<id>"} reference must name an identity that
// has a document. {fileId: 0} is the nil reference and is always valid.
func ValidateArchive(data []byte) *ValidationResult {
	v := &validator{objects: make(map[identity.ID]int)}
	v.validate(yamlutil.SplitDocuments(data))

	return &v.result
}

type reference struct {
	field string
	id    identity.ID
}

type validator struct {
	result  ValidationResult
	objects map[identity.ID]int
	refs    []reference
}

func (v *validator) addError(field, msg string) {
	v.result.Findings = append(v.result.Findings, ValidationFinding{
		Severity: SeverityError,
		Field:    field,
		Message:  msg,
	})
}

func (v *validator) addWarning(field, msg string) {
	v.result.Findings = append(v.result.Findings, ValidationFinding{
		Severity: SeverityWarning,
		Field:    field,
		Message:  msg,
	})
}

func (v *validator) validate(docs [][]byte) {
	v.result.Documents = len(docs)

	if len(docs) == 0 {
		v.addWarning("archive", "archive contains no documents")
		return
	}

	for i, doc := range docs {
		v.validateDocument(i+1, doc)
	}

	for _, ref := range v.refs {
		if _, ok := v.objects[ref.id]; !ok {
			v.addError(ref.field, fmt.Sprintf("dangling reference to %s (no document describes it)", ref.id))
		}
	}
}

func (v *validator) validateDocument(n int, doc []byte) {
	field := fmt.Sprintf("document[%d]", n)

	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		v.addError(field, fmt.Sprintf("malformed YAML: %v", err))
		return
	}

	body := &root
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		body = root.Content[0]
	}

	if body.Kind != yaml.MappingNode || len(body.Content) != 2 {
		v.addError(field, "document must be a mapping with a single type tag key")
		return
	}

	tag, fields := body.Content[0].Value, body.Content[1]

	// A reference written outside any object, such as a nil root.
	if tag == archive.FileIDKey {
		v.addWarning(field, "standalone reference outside any object document")
		v.walk(field, body)

		return
	}

	if tag == "" {
		v.addError(field, "type tag is empty")
		return
	}

	field += " " + tag

	if fields.Kind != yaml.MappingNode {
		v.addError(field, "object body must be a mapping")
		return
	}

	v.recordIdentity(n, field, fields)

	for i := 0; i+1 < len(fields.Content); i += 2 {
		v.walk(field+"."+fields.Content[i].Value, fields.Content[i+1])
	}
}

func (v *validator) recordIdentity(n int, field string, fields *yaml.Node) {
	var value *yaml.Node

	for i := 0; i+1 < len(fields.Content); i += 2 {
		if fields.Content[i].Value == IdentityField {
			value = fields.Content[i+1]
			break
		}
	}

	if value == nil || value.Kind != yaml.ScalarNode {
		v.addWarning(field, fmt.Sprintf("no %s field; references to this object cannot be checked", IdentityField))
		return
	}

	id, err := identity.Parse(value.Value)
	if err != nil {
		v.addError(field+"."+IdentityField, err.Error())
		return
	}

	if first, ok := v.objects[id]; ok {
		v.addError(field, fmt.Sprintf("object %s is written more than once (first in document[%d])", id, first))
		return
	}

	v.objects[id] = n
}

// walk visits every value below node, collecting references.
func (v *validator) walk(field string, node *yaml.Node) {
	switch node.Kind {
	case yaml.MappingNode:
		if isReference(node) {
			v.reference(field, node.Content[1])
			return
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			v.walk(field+"."+node.Content[i].Value, node.Content[i+1])
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			v.walk(fmt.Sprintf("%s[%d]", field, i), item)
		}
	}
}

func isReference(node *yaml.Node) bool {
	return len(node.Content) == 2 && node.Content[0].Value == archive.FileIDKey
}

func (v *validator) reference(field string, value *yaml.Node) {
	if value.Kind != yaml.ScalarNode {
		v.addError(field, "malformed reference: fileId must be a scalar")
		return
	}

	if value.ShortTag() == "!!int" && value.Value == "0" {
		v.result.NilReferences++
		return
	}

	id, err := identity.Parse(value.Value)
	if err != nil {
		v.addError(field, fmt.Sprintf("malformed reference: %v", err))
		return
	}

	v.result.References++
	v.refs = append(v.refs, reference{field: field, id: id})
}

// FormatValidationResult returns a human-readable string of all findings.
func FormatValidationResult(result *ValidationResult) string {
	summary := fmt.Sprintf("Checked %d document(s), %d reference(s), %d nil reference(s).\n",
		result.Documents, result.References, result.NilReferences)

	if len(result.Findings) == 0 {
		return summary + "Validation passed: no issues found."
	}

	var sb strings.Builder

	sb.WriteString(summary)

	errors := result.Errors()
	warnings := result.Warnings()

	if len(errors) > 0 {
		_, _ = fmt.Fprintf(&sb, "\nErrors (%d):\n", len(errors))

		for _, f := range errors {
			_, _ = fmt.Fprintf(&sb, "  - %s: %s\n", f.Field, f.Message)
		}
	}

	if len(warnings) > 0 {
		_, _ = fmt.Fprintf(&sb, "\nWarnings (%d):\n", len(warnings))

		for _, f := range warnings {
			_, _ = fmt.Fprintf(&sb, "  - %s: %s\n", f.Field, f.Message)
		}
	}

	return sb.String()
}
