// internal/engine/recommend.go
package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/metrics"
	"abiturbot/internal/models"
)

const (
	StatusGrant    = "Grant"
	StatusContract = "Kontrakt"

	maxRecommendations = 5
)

// Engine scores and ranks catalog programs against a submitted exam score.
type Engine struct {
	logger logger.Logger
}

func New(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// candidate keeps the unrounded comparison score next to the display
// record so ranking never depends on rounding.
type candidate struct {
	rec      models.Recommendation
	rawScore float64
}

// FindRecommendations returns at most 5 recommendations for the pair and
// score, sorted by comparison score descending. A malformed program entry
// is logged and skipped, never aborting the scan.
func (e *Engine) FindRecommendations(pair models.SubjectPair, score float64, catalog *models.Catalog) []models.Recommendation {
	start := time.Now()
	normPair := NormalizePair(pair)

	var candidates []candidate
	for i := range catalog.Universities {
		university := &catalog.Universities[i]
		for j := range university.Programs {
			program := &university.Programs[j]
			if !matchesPair(program, normPair) {
				continue
			}
			cand, ok, err := scoreProgram(university, program, score)
			if err != nil {
				e.logger.Warn("skipping malformed program entry", map[string]interface{}{
					"university": university.Name,
					"program":    program.Name,
					"error":      err.Error(),
				})
				continue
			}
			if ok {
				candidates = append(candidates, cand)
			}
		}
	}

	// Stable keeps encounter order for equal scores.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].rawScore > candidates[b].rawScore
	})
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}

	out := make([]models.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.rec)
	}

	metrics.RecommendationsComputed.Inc()
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("recommendations computed", map[string]interface{}{
		"pair":    fmt.Sprintf("%s - %s", pair.First, pair.Second),
		"score":   score,
		"results": len(out),
	})
	return out
}

// scoreProgram resolves one matching program to a recommendation. The ok
// return is false when the submitted score qualifies for neither funding
// category; an error marks a malformed entry the caller must skip.
func scoreProgram(university *models.University, program *models.Program, userScore float64) (candidate, bool, error) {
	grantScore, grantInfo, grantOK, err := seriesComparison(program.PassingScores.Grant)
	if err != nil {
		return candidate{}, false, fmt.Errorf("grant series: %w", err)
	}
	contractScore, contractInfo, contractOK, err := seriesComparison(program.PassingScores.Contract)
	if err != nil {
		return candidate{}, false, fmt.Errorf("contract series: %w", err)
	}

	// Grant is preferred whenever both categories qualify.
	var status, yearInfo string
	var passing float64
	switch {
	case grantOK && userScore >= grantScore:
		status, passing, yearInfo = StatusGrant, grantScore, grantInfo
	case contractOK && userScore >= contractScore:
		status, passing, yearInfo = StatusContract, contractScore, contractInfo
	default:
		return candidate{}, false, nil
	}

	return candidate{
		rec: models.Recommendation{
			UniversityName: capitalize(university.Name),
			Region:         university.Region,
			ProgramName:    program.Name,
			Status:         status,
			PassingScore:   math.Round(passing*10) / 10,
			YearInfo:       yearInfo,
			EducationForm:  program.EducationForm,
			Language:       program.Language,
			ContractFee:    program.ContractFee,
		},
		rawScore: passing,
	}, true, nil
}

// seriesComparison reduces a score series to a single comparison value:
// the mean over >=2 years, or the single year's value. The descriptor
// names the year count or the year itself.
func seriesComparison(series models.ScoreSeries) (float64, string, bool, error) {
	if len(series) == 0 {
		return 0, "", false, nil
	}

	if len(series) >= 2 {
		sum := 0.0
		for _, score := range series {
			if err := validScore(score); err != nil {
				return 0, "", false, err
			}
			sum += score
		}
		mean := sum / float64(len(series))
		return mean, fmt.Sprintf("%d yillik o'rtacha", len(series)), true, nil
	}

	year, _ := series.LatestYear()
	score := series[year]
	if err := validScore(score); err != nil {
		return 0, "", false, err
	}
	return score, fmt.Sprintf("%s-yil", year), true, nil
}

func validScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return fmt.Errorf("invalid passing score %v", score)
	}
	return nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
