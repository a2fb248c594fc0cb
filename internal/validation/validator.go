// Package validation provides JSON-LD document validation for hostjobs models.
//
// It uses:
//   - go-playground/validator for field constraints
//   - json-gold for JSON-LD semantic validation
//
// # Validation Process
//
// 1. JSON parsing - Ensures valid JSON syntax
// 2. JSON-LD validation - @context, @type and @id present, document expands
// 3. Field validation - struct tags plus the host lifecycle state
//
// # Usage Example
//
//	v := validation.New()
//	result, err := v.ValidateHost(data)
//	if err != nil {
//	    return err
//	}
//	for _, e := range result.Errors {
//	    fmt.Printf("%s: %s\n", e.Field, e.Message)
//	}
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/piprate/json-gold/ld"

	"evalgo.org/hostjobs/models"
)

// Validator handles JSON-LD document validation for hostjobs models.
type Validator struct {
	// structValidator validates Go struct constraints and tags
	structValidator *validator.Validate

	// jsonldProcessor validates JSON-LD semantic correctness
	jsonldProcessor *ld.JsonLdProcessor

	// documentLoader resolves remote contexts, with schema.org preloaded
	documentLoader ld.DocumentLoader
}

// schemaOrgContext is served in place of the remote schema.org context so
// that validation works offline.
var schemaOrgContext = map[string]interface{}{
	"@context": map[string]interface{}{
		"@vocab": "https://schema.org/",
	},
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the JSON name of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// hostDocument mirrors models.Host with the state kept as text so that an
// unknown state is reported as a field error instead of a decode failure.
type hostDocument struct {
	Context    string    `json:"@context"`
	Type       string    `json:"@type" validate:"omitempty,eq=ComputerSystem"`
	ID         string    `json:"@id" validate:"omitempty,max=256"`
	Rev        string    `json:"_rev"`
	Name       string    `json:"name" validate:"required,max=253"`
	IPAddress  string    `json:"ipAddress" validate:"omitempty,ip"`
	Datacenter string    `json:"location" validate:"omitempty,max=128"`
	State      string    `json:"hostState" validate:"required"`
	UpdatedAt  time.Time `json:"dateModified"`
}

// New creates a new Validator instance with struct and JSON-LD validators.
func New() *Validator {
	sv := validator.New()
	// report JSON field names rather than Go field names
	sv.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	loader := ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(nil))
	for _, u := range []string{"https://schema.org", "https://schema.org/", "http://schema.org", "http://schema.org/"} {
		loader.AddDocument(u, schemaOrgContext)
	}

	return &Validator{
		structValidator: sv,
		jsonldProcessor: ld.NewJsonLdProcessor(),
		documentLoader:  loader,
	}
}

// ValidateHost validates a host JSON-LD document.
func (v *Validator) ValidateHost(data []byte) (*ValidationResult, error) {
	_, result, err := v.ParseHost(data)
	return result, err
}

// ParseHost validates a host JSON-LD document and, when it is valid, returns
// the decoded host.
func (v *Validator) ParseHost(data []byte) (*models.Host, *ValidationResult, error) {
	var doc hostDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalidJSON(err), nil
	}

	allErrors := v.validateJSONLD(data)
	allErrors = append(allErrors, v.ValidateStruct(&doc)...)

	var state models.HostState
	if doc.State != "" {
		parsed, err := models.ParseHostState(doc.State)
		if err != nil {
			allErrors = append(allErrors, stateError(doc.State))
		}
		state = parsed
	}

	result := &ValidationResult{Valid: len(allErrors) == 0, Errors: allErrors}
	if !result.Valid {
		return nil, result, nil
	}

	return &models.Host{
		Context:    doc.Context,
		Type:       doc.Type,
		ID:         doc.ID,
		Rev:        doc.Rev,
		Name:       doc.Name,
		IPAddress:  doc.IPAddress,
		Datacenter: doc.Datacenter,
		State:      state,
		UpdatedAt:  doc.UpdatedAt,
	}, result, nil
}

// ValidateStruct checks s against its validate tags.
func (v *Validator) ValidateStruct(s interface{}) []ValidationError {
	err := v.structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "document", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: describe(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

// ValidateState reports whether name is a lifecycle state.
func (v *Validator) ValidateState(name string) []ValidationError {
	if _, err := models.ParseHostState(name); err != nil {
		return []ValidationError{stateError(name)}
	}
	return nil
}

// validateJSONLD validates JSON-LD structure using json-gold
func (v *Validator) validateJSONLD(data []byte) []ValidationError {
	var errs []ValidationError

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return invalidJSON(err).Errors
	}

	docMap, ok := doc.(map[string]interface{})
	if !ok {
		return []ValidationError{{Field: "document", Message: "Document must be a JSON object"}}
	}

	for _, field := range []string{"@context", "@type", "@id"} {
		if _, has := docMap[field]; !has {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("Missing %s field (required for JSON-LD)", field),
			})
		}
	}

	// expanding proves the document is well-formed JSON-LD
	options := ld.NewJsonLdOptions("")
	options.DocumentLoader = v.documentLoader
	if _, err := v.jsonldProcessor.Expand(doc, options); err != nil {
		errs = append(errs, ValidationError{
			Field:   "document",
			Message: fmt.Sprintf("Invalid JSON-LD structure: %v", err),
		})
	}

	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "ip":
		return "Invalid IP address format"
	case "eq":
		return fmt.Sprintf("%s must be '%s'", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}

func stateError(value string) ValidationError {
	names := make([]string, 0, len(models.AllHostStates()))
	for _, s := range models.AllHostStates() {
		names = append(names, s.String())
	}
	return ValidationError{
		Field:   "hostState",
		Message: fmt.Sprintf("Invalid host state: must be one of: %s", strings.Join(names, ", ")),
		Value:   value,
	}
}

func invalidJSON(err error) *ValidationResult {
	return &ValidationResult{
		Valid: false,
		Errors: []ValidationError{
			{
				Field:   "document",
				Message: fmt.Sprintf("Invalid JSON: %v", err),
			},
		},
	}
}
