package model

import "errors"

var (
	// Session related errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Panel related errors
	ErrVirtualHostNotFound = errors.New("virtual host not found")
	ErrModuleNotFound      = errors.New("module not found")
	ErrPluginNotFound      = errors.New("plugin not found")
	ErrDatabaseExists      = errors.New("database already exists")
	ErrDBUserExists        = errors.New("database user already exists")
	ErrServiceNotFound     = errors.New("service not found")

	// File related errors
	ErrFileNotFound      = errors.New("file not found")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrPathConflict      = errors.New("path conflict")
	ErrFileTooLarge      = errors.New("file too large")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
