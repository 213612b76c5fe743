package upload

import "equiplend/internal/pkg/apperr"

var (
	ErrNoFile          = apperr.New(apperr.ErrValidation, "no file provided")
	ErrEmptyFile       = apperr.New(apperr.ErrValidation, "file is empty")
	ErrFileTooLarge    = apperr.New(apperr.ErrValidation, "file exceeds 5MB limit")
	ErrInvalidMimeType = apperr.New(apperr.ErrValidation, "file type not allowed, use jpeg, png, webp or gif")
)
