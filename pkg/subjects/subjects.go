// Package subjects holds the fixed menu of admissible exam subject pairs
// offered to the user, and the parsing of a menu entry back into an
// ordered pair.
package subjects

import (
	"fmt"
	"strings"

	"abiturbot/internal/models"
)

// Pairs is the enumerated offering list, in menu order. Entries are
// rendered as buttons verbatim.
var Pairs = []string{
	"Biologiya - Kimyo",
	"Biologiya - Ona tili va adabiyoti",
	"Chet tili - Ona tili va adabiyoti",
	"Fizika - Chet tili",
	"Fizika - Matematika",
	"Fransuz tili - Ona tili va adabiyoti",
	"Geografiya - Matematika",
	"Huquqshunoslik - Chet tili",
	"Huquqshunoslik - Ingliz tili",
	"Ingliz tili - Matematika",
	"Ingliz tili - Ona tili va adabiyoti",
	"Ingliz tili - Tarix",
	"Kimyo - Biologiya",
	"Kimyo - Fizika",
	"Kimyo - Matematika",
	"Matematika - Biologiya",
	"Matematika - Chet tili",
	"Matematika - Fizika",
	"Matematika - Geografiya",
	"Matematika - Ingliz tili",
	"Matematika - Kimyo",
	"Matematika - Ona tili va adabiyoti",
	"Nemis tili - Ona tili va adabiyoti",
	"Ona tili va adabiyoti - Chet tili",
	"Ona tili va adabiyoti - Ingliz tili",
	"Ona tili va adabiyoti - Matematika",
	"Ona tili va adabiyoti - Tarix",
	"O'zbek tili va adabiyoti - Chet tili",
	"Tarix - Chet tili",
	"Tarix - Geografiya",
	"Tarix - Matematika",
	"Tarix - Ona tili va adabiyoti",
}

// IsOffered reports whether the menu contains the entry verbatim.
func IsOffered(entry string) bool {
	for _, p := range Pairs {
		if p == entry {
			return true
		}
	}
	return false
}

// Parse splits a menu entry "A - B" into an ordered pair. An entry with a
// single subject yields that subject in both positions.
func Parse(entry string) (models.SubjectPair, error) {
	parts := strings.Split(entry, " - ")
	first := strings.TrimSpace(parts[0])
	if first == "" {
		return models.SubjectPair{}, fmt.Errorf("empty subject pair entry %q", entry)
	}
	second := first
	if len(parts) > 1 {
		second = strings.TrimSpace(parts[1])
	}
	return models.SubjectPair{First: first, Second: second}, nil
}
