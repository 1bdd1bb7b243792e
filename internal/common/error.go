package common

import "fmt"

var (
	ErrAssetNotFoundError = fmt.Errorf("asset not found")
	ErrAssetExistsError   = fmt.Errorf("asset already exists")
	ErrBlobNotFoundError  = fmt.Errorf("blob not found")
	ErrNoFileError        = fmt.Errorf("no file in request")
	ErrEmptyQueryError    = fmt.Errorf("empty search query")
	ErrUnauthorizedError  = fmt.Errorf("unauthorized")
	ErrBlobDeleteError    = fmt.Errorf("cannot delete blob")
)
