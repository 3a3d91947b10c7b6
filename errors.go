package smx

import "errors"

var (
	// ErrInvalidKey indicates an empty or malformed settings key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrInvalidScope indicates a scope name that is not global, local or target.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrScopeNotLoaded indicates the config file backing a scope was never loaded.
	ErrScopeNotLoaded = errors.New("scope not loaded")
	// ErrTargetNotSet indicates the target scope was requested without a target id.
	ErrTargetNotSet = errors.New("no target set")
	// ErrTargetNotFound indicates a target id that is not present in the local config.
	ErrTargetNotFound = errors.New("target not found")
	// ErrTargetExists indicates an attempt to add a target id that is already taken.
	ErrTargetExists = errors.New("target already exists")
	// ErrDefaultTarget indicates an operation that is not allowed on the default target.
	ErrDefaultTarget = errors.New("target is the default target")
	// ErrValidation indicates a settings value rejected by its definition.
	ErrValidation = errors.New("invalid setting value")
	// ErrEditorNotFound indicates an editor name that is not configured.
	ErrEditorNotFound = errors.New("editor not found")
	// ErrUnsupportedContext indicates an editor that can not open the requested context.
	ErrUnsupportedContext = errors.New("editor does not support context")
	// ErrCreateConfigDir indicates a config directory could not be created.
	ErrCreateConfigDir = errors.New("failed to create config directory")
	// ErrWriteConfig indicates a config file could not be written.
	ErrWriteConfig = errors.New("failed to write config")
)
