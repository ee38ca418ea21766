package service

import "errors"

var (
	// ErrDocumentNotFound is returned when a document does not exist for the requesting user.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrTemplateNotFound is returned when a document names a template that does not exist.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrTemplateInUse is returned when deleting a template still referenced by documents.
	ErrTemplateInUse = errors.New("template is in use")
	// ErrValidation is returned for malformed requests.
	ErrValidation = errors.New("validation failed")
)
