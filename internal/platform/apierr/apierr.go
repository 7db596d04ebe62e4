package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error erreur applicative portant le statut HTTP et le code exposé au client
type Error struct {
	Status int
	Code   string
	Err    error
}

// Error retourne le message de l'erreur sous-jacente, sinon le code ou le statut
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

// Unwrap expose l'erreur sous-jacente à errors.Is / errors.As
func (e *Error) Unwrap() error { return e.Err }

// New crée une erreur applicative
func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// BadRequest crée une erreur 400
func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// TooLarge crée une erreur 413 (fichier trop volumineux)
func TooLarge(code string, err error) *Error {
	return New(http.StatusRequestEntityTooLarge, code, err)
}

// Internal crée une erreur 500 avec le code "internal_error"
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "internal_error", err)
}

// As extrait une *Error de la chaîne d'erreurs; toute autre erreur devient une 500
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}
