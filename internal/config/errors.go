package config

import "errors"

var (
	ErrMissingMongoURI       = errors.New("mongo URI is required")
	ErrMissingGithubToken    = errors.New("github token is required")
	ErrInvalidStorageType    = errors.New("invalid storage type")
	ErrInvalidClassifierType = errors.New("invalid classifier type")
	ErrMissingClassifierKey  = errors.New("classifier API key is required")
)
