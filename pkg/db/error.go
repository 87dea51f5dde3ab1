package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Dialect-specific unique-violation markers. Gorm only translates these
// into ErrDuplicatedKey when error translation is enabled, so the raw
// driver messages are matched as well.
var duplicateKeyMarkers = []string{
	"duplicate key value violates unique constraint", // postgres 23505
	"Error 1062",                                     // mysql
	"UNIQUE constraint failed",                       // sqlite 2067
}

// IsDuplicateKeyErr reports whether err is a unique-constraint violation,
// such as an insert colliding on the document number index.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
