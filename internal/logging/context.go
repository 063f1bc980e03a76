package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldChannel is the standardized structured logging key for channel file paths.
	FieldChannel = "channel"
	// FieldRole is the standardized structured logging key for endpoint roles.
	FieldRole = "role"
	// FieldCommand is the standardized structured logging key for hosted commands.
	FieldCommand = "command"
)
