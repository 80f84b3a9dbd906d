package domain

import "errors"

// Error taxonomy shared by the model, usecases and repositories. Callers
// match with errors.Is; repositories wrap these with per-entity detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrAreaNotEmpty = errors.New("area still has tables")
	ErrValidation   = errors.New("validation failed")
	ErrTransport    = errors.New("repository call failed")
)
