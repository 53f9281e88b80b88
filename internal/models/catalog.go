package models

// SubjectPair is an ordered pair of free-text subject names. Comparison is
// by normalized form, never by literal equality.
type SubjectPair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// Subject is one required exam subject of a program, tagged with its
// position (1 or 2) in the pair.
type Subject struct {
	Name  string `json:"nomi"`
	Order int    `json:"tartib"`
}

// ScoreSeries maps a year ("2023") to the passing score of that year for
// one funding category.
type ScoreSeries map[string]float64

// LatestYear returns the lexicographically greatest year key. Year keys are
// four-digit strings, so string ordering matches numeric ordering.
func (s ScoreSeries) LatestYear() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	latest := ""
	for year := range s {
		if year > latest {
			latest = year
		}
	}
	return latest, true
}

// PassingScores holds the historical score series per funding category.
type PassingScores struct {
	Grant    ScoreSeries `json:"grant"`
	Contract ScoreSeries `json:"kontrakt"`
}

// Program is one admission direction inside one institution.
type Program struct {
	Name          string        `json:"ta'lim_yo'nalishi_nomi"`
	Subjects      []Subject     `json:"fanlar"`
	PassingScores PassingScores `json:"o'tish_ballari"`
	EducationForm string        `json:"education_form"`
	Language      string        `json:"language"`
	ContractFee   int64         `json:"kontrakt_miqdori"`
}

// University is one institution entry owning its admission programs.
type University struct {
	Name     string    `json:"otm_nomi"`
	Region   string    `json:"otm_hududi"`
	Programs []Program `json:"ta'lim_yo'nalishlari"`
}

// Catalog is the full in-memory university catalog. Loaded once, read-only
// afterwards.
type Catalog struct {
	Universities []University `json:"otmlar"`
}

// Recommendation is one ranked result entry released to the user after
// payment.
type Recommendation struct {
	UniversityName string  `json:"otm_nomi"`
	Region         string  `json:"otm_hududi"`
	ProgramName    string  `json:"yo_nalish_nomi"`
	Status         string  `json:"status"` // "Grant" or "Kontrakt"
	PassingScore   float64 `json:"passing_score"`
	YearInfo       string  `json:"year"`
	EducationForm  string  `json:"education_form"`
	Language       string  `json:"language"`
	ContractFee    int64   `json:"kontrakt_miqdori"`
}
