package main

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type config struct {
	Root string `validate:"required,dir"`
}

// Validate validates the configuration.
func (c *config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	return nil
}
