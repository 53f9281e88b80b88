// internal/engine/normalize.go
package engine

import (
	"strings"

	"abiturbot/internal/models"
)

// CreativeExamLabel is the single canonical form every creative/vocational
// exam wording collapses to.
const CreativeExamLabel = "kasbiy (ijodiy) imtihon"

// apostropheVariants are the known spellings of the Uzbek o' letter that
// appear in catalog data, all folded to a plain "o".
var apostropheVariants = []string{"o'", "o‘", "o’", "oʻ"}

// Normalize produces the canonical lowercase form of a subject name.
// Idempotent: normalizing an already-normalized string is a no-op.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "ijodiy") || strings.Contains(lower, "kasbiy") {
		return CreativeExamLabel
	}
	for _, variant := range apostropheVariants {
		lower = strings.ReplaceAll(lower, variant, "o")
	}
	return strings.TrimSpace(lower)
}

// NormalizePair normalizes both members of a subject pair.
func NormalizePair(pair models.SubjectPair) models.SubjectPair {
	return models.SubjectPair{
		First:  Normalize(pair.First),
		Second: Normalize(pair.Second),
	}
}

// requiredPair extracts the program's required subject pair when the
// program carries exactly two subjects tagged order 1 and 2. Any other
// shape means the program cannot be matched to a user pair.
func requiredPair(program *models.Program) (models.SubjectPair, bool) {
	if len(program.Subjects) != 2 {
		return models.SubjectPair{}, false
	}
	if program.Subjects[0].Order != 1 || program.Subjects[1].Order != 2 {
		return models.SubjectPair{}, false
	}
	return models.SubjectPair{
		First:  program.Subjects[0].Name,
		Second: program.Subjects[1].Name,
	}, true
}

// matchesPair reports whether the program requires the given pair, compared
// by normalized form in the same order.
func matchesPair(program *models.Program, normUserPair models.SubjectPair) bool {
	required, ok := requiredPair(program)
	if !ok {
		return false
	}
	return Normalize(required.First) == normUserPair.First &&
		Normalize(required.Second) == normUserPair.Second
}
