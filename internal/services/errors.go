package services

import "errors"

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrImportNotFound = errors.New("import not found")
)
