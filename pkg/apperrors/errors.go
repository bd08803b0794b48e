package apperrors

import "errors"

var (
	ErrUnknownEntity     = errors.New("unknown entity type")
	ErrEntityMissing     = errors.New("entity table missing from warehouse")
	ErrSchemaDirMissing  = errors.New("schema export directory missing")
	ErrMalformedLogBlock = errors.New("malformed validation log block")
	ErrExternalTool      = errors.New("external tool failed")
	ErrInvalidLanguage   = errors.New("invalid language filter")
	ErrInvalidJoinGraph  = errors.New("invalid join graph")
)
