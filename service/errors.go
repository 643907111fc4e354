package service

import (
	"errors"
	"net/http"
)

var (
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("product already exists")
)

// RequestError is a client error detected before any collaborator is called.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func badRequest(message string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: message}
}
