package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	// Validate general config
	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}

	if c.Lookup != nil {
		if err := validate.Struct(c.Lookup); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "lookup", "")...)
		}
	}

	if len(c.Sources) == 0 {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "source",
			Message:   "configuration must contain at least one source",
		})
	} else {
		validationErrors = append(validationErrors, c.validateSources()...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateSources() ValidationErrors {
	var validationErrors ValidationErrors
	seenNames := make(map[string]bool)

	for i, src := range c.Sources {
		if src == nil {
			continue
		}

		itemName := src.Name
		if itemName == "" {
			itemName = fmt.Sprintf("source[%d]", i)
		}

		// Validate struct fields
		if err := validate.Struct(src); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("source.%d", i), itemName)...)
		}

		// Check duplicate source name
		if src.Name != "" && seenNames[src.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate source name: %s", src.Name),
			})
		}
		seenNames[src.Name] = true

		if src.Watch && src.Type != SourceFile {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "watch",
				Message:   "watch is only supported for file sources",
			})
		}
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// e.Field() returns the TOML tag name because we registered TagNameFunc
				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + e.Field()
				} else {
					fieldPath = e.Field()
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
