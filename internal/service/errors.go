package service

import "errors"

var (
	ErrNotFound            = errors.New("document not found")
	ErrForbidden           = errors.New("forbidden")
	ErrIdentityNotFound    = errors.New("identity not found")
	ErrMalformedUploadPath = errors.New("malformed upload path")
	ErrNameRequired        = errors.New("name is required")
)
