// Package mpris publishes the session over D-Bus for desktop controllers.
package mpris

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Settings represents the MPRIS publisher settings.
type Settings struct {
	Name     string `mapstructure:"name" default:"automedia" validate:"required"`
	Identity string `mapstructure:"identity" default:"Auto Media" validate:"required"`
}

// ParseSettings decodes and validates publisher settings from config.
func ParseSettings(raw map[string]any) (*Settings, error) {
	var settings Settings

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &settings,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(&settings); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(settings); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &settings, nil
}
