package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrMissingCategory    = errors.New("category must be selected before uploading")
	ErrInvalidUploadKind  = errors.New("invalid upload kind")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrUploadInitFailed   = errors.New("failed to initialize upload session")
	ErrBadInitResponse    = errors.New("malformed upload session init response")
	ErrUploadFailed       = errors.New("file upload to storage failed")
	ErrCompleteFailed     = errors.New("failed to complete upload session")
	ErrMissingETag        = errors.New("part upload response missing ETag header")
	ErrAssetNotReady      = errors.New("asset is missing preview or source file")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateAssetSlug = errors.New("asset slug already exists")
)
