package hospital

import "errors"

var (
	ErrHospitalNotFound = errors.New("Hospital not found")
	ErrDuplicateName    = errors.New("hospital with this name already exists")
	ErrDuplicateKey     = errors.New("duplicate key error")
)
