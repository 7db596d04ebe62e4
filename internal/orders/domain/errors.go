package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFileMissing aucun fichier dans la requête d'upload
	ErrFileMissing = errors.New("file not provided")
	// ErrFileTooLarge le fichier dépasse la taille maximale autorisée
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")
	// ErrMalformedLine une ligne ne respecte pas le format à largeur fixe
	ErrMalformedLine = errors.New("malformed fixed-width line")
	// ErrInvalidFilter paramètres de recherche invalides
	ErrInvalidFilter = errors.New("invalid order filter")
)

// LineError décrit une ligne rejetée par le parser (numérotée à partir de 1)
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap expose ErrMalformedLine et la cause pour errors.Is/As
func (e *LineError) Unwrap() []error {
	return []error{ErrMalformedLine, e.Err}
}
