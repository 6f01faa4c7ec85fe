package templates

import "errors"

var (
	// ErrInvalidTemplate is returned by Validate/Upsert for a name or
	// config-override value outside the bounds the original validator
	// enforces.
	ErrInvalidTemplate = errors.New("invalid template")
	// ErrTemplateNotFound is returned by Get for an unknown name.
	ErrTemplateNotFound = errors.New("template not found")
)
