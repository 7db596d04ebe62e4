package application

import (
	"bytes"
	"errors"
	"strings"

	"legacyorders/internal/orders/domain"
	"legacyorders/internal/platform/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseResult lignes valides d'un fichier et lignes rejetées (mode non strict)
type ParseResult struct {
	Lines    []domain.OrderLine
	Rejected []*domain.LineError
}

// FileParser découpe un fichier legacy en lignes à largeur fixe.
// En mode strict la première ligne invalide interrompt le traitement;
// sinon elle est ignorée et journalisée avec son numéro.
type FileParser struct {
	log    *logger.Logger
	strict bool
}

// NewFileParser crée un parser
func NewFileParser(log *logger.Logger, strict bool) *FileParser {
	return &FileParser{
		log:    log.With("component", "file_parser"),
		strict: strict,
	}
}

// Parse lit toutes les lignes non vides du contenu (séparateurs \n ou \r\n)
func (p *FileParser) Parse(content []byte) (ParseResult, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	var result ParseResult
	for i, raw := range strings.Split(string(content), "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		line, err := domain.ParseLine(raw)
		if err != nil {
			lineErr := &domain.LineError{Line: i + 1, Err: err}
			if p.strict {
				return ParseResult{}, lineErr
			}
			p.log.Warn("malformed line skipped", "line", lineErr.Line, "error", err)
			result.Rejected = append(result.Rejected, lineErr)
			continue
		}
		result.Lines = append(result.Lines, line)
	}

	p.log.Info("file parsed", "lines", len(result.Lines), "rejected", len(result.Rejected))
	return result, nil
}

// IsMalformed indique si err provient d'une ligne invalide
func IsMalformed(err error) bool {
	return errors.Is(err, domain.ErrMalformedLine)
}
