package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate validates the EngineConfig using struct tags and cross-field
// rules.
func (c *EngineConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateInventoryGate(); err != nil {
		return err
	}

	return nil
}

// validateInventoryGate rejects a config whose "rule_types" references
// "inventory_gate" without any resolver configured, which would make every
// such rule a silent no-op.
func (c *EngineConfig) validateInventoryGate() error {
	usesInventoryGate := false
	for _, identifier := range c.Engine.RuleTypes {
		if identifier == "inventory_gate" {
			usesInventoryGate = true
			break
		}
	}
	if !usesInventoryGate {
		return nil
	}
	if c.Engine.InventoryGate.Resolver == "" && len(c.Engine.InventoryGate.Resolvers) == 0 {
		return errors.New("engine.rule_types references inventory_gate but engine.inventory_gate has no resolver configured")
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to
// user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
