package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxComponentsPerScan = 100000
	MaxIDLength          = 100
	MaxProperties        = 100
	MaxPropertyKey       = 100
	MaxPorts             = 16

	// Regular expressions
	idPattern      = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_\-. ]*$`)
	propKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func init() {
	validate = validator.New()
}

// ScanRequest represents a request to run a takeoff over a model document
type ScanRequest struct {
	ModelPath    string   `json:"modelPath" validate:"required"`
	StatePath    string   `json:"statePath" validate:"omitempty"`
	Components   []string `json:"components" validate:"omitempty,dive,min=1,max=100"`
	Epsilon      float64  `json:"epsilon" validate:"omitempty,gt=0"`
	TraversalCap int      `json:"traversalCap" validate:"omitempty,gt=0"`
}

// ComponentRequest represents a component definition to be added to a model
type ComponentRequest struct {
	ID         string         `json:"id" validate:"required,min=1,max=100"`
	Class      string         `json:"class" validate:"omitempty,max=50"`
	Ports      []PortRequest  `json:"ports" validate:"omitempty,max=16,dive"`
	Properties map[string]any `json:"properties" validate:"omitempty,max=100"`
}

// PortRequest represents a single connection point on a component
type PortRequest struct {
	Name     string     `json:"name" validate:"omitempty,max=50"`
	Position [3]float64 `json:"position"`
}

// ValidateScanRequest validates a takeoff run request
func ValidateScanRequest(req *ScanRequest) error {
	if req == nil {
		return errors.New("scan request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if len(req.Components) > MaxComponentsPerScan {
		return fmt.Errorf("Components: maximum %d components allowed, got %d", MaxComponentsPerScan, len(req.Components))
	}

	for i, id := range req.Components {
		if !idPattern.MatchString(id) {
			return fmt.Errorf("Components: identifier at index %d contains invalid characters", i)
		}
	}

	return nil
}

// ValidateComponentRequest validates a component definition
func ValidateComponentRequest(req *ComponentRequest) error {
	if req == nil {
		return errors.New("component request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if !idPattern.MatchString(req.ID) {
		return fmt.Errorf("ID: '%s' contains invalid characters", req.ID)
	}

	if len(req.Properties) > MaxProperties {
		return fmt.Errorf("Properties: maximum %d properties allowed, got %d", MaxProperties, len(req.Properties))
	}

	for key := range req.Properties {
		if err := ValidatePropertyKey(key); err != nil {
			return fmt.Errorf("Properties: %w", err)
		}
	}

	return nil
}

// ValidatePropertyKey validates a property key
func ValidatePropertyKey(key string) error {
	if key == "" {
		return errors.New("property key cannot be empty")
	}
	if len(key) > MaxPropertyKey {
		return fmt.Errorf("property key '%s' exceeds maximum length of %d characters", key, MaxPropertyKey)
	}
	if !propKeyPattern.MatchString(key) {
		return fmt.Errorf("property key '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", key)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "dive":
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
