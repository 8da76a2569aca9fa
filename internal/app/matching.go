package app

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// Scoring weights. The total tops out at 100 for a contractor matching on
// every axis of a non-urgent job.
const (
	weightSkills            = 50.0
	weightDifficultyMatch   = 20.0
	weightNoPreference      = 10.0
	weightPriorityEmergency = 15.0
	weightPriorityUrgent    = 10.0
	weightJobValue          = 15.0
	weightAutoCall          = 10.0
	weightExperienceCap     = 20.0
	weightExperiencePerYear = 2.0
	weightInsured           = 5.0
)

// MatchCriteria describes the job being matched.
type MatchCriteria struct {
	Skills         []string
	Difficulty     domain.Difficulty
	Priority       domain.Priority
	EstimatedValue float64
}

// ContractorMatch is one ranked candidate.
type ContractorMatch struct {
	Contractor domain.User
	Profile    domain.ContractorProfile
	Score      int
}

// FindMatchingContractors scores every auto-assignable contractor against
// the criteria and returns them ranked best first. Ties keep the store's
// order, so repeated calls over unchanged data rank identically.
func (a *App) FindMatchingContractors(criteria MatchCriteria) ([]ContractorMatch, error) {
	candidates, err := a.store.ListAutoAssignableCandidates()
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	matches := make([]ContractorMatch, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, ContractorMatch{
			Contractor: c.Contractor,
			Profile:    c.Profile,
			Score:      matchScore(c.Profile, criteria),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// matchScore computes the weighted fit of a contractor profile for a job.
// Fractional skill ratios are summed in floating point and rounded once at
// the end.
func matchScore(p domain.ContractorProfile, c MatchCriteria) int {
	score := 0.0

	matched := 0
	for _, req := range c.Skills {
		if anySkillMatches(p.Skills, req) {
			matched++
		}
	}
	total := len(c.Skills)
	if total < 1 {
		total = 1
	}
	score += float64(matched) / float64(total) * weightSkills

	if difficultyPreferred(p.PreferredJobTypes, c.Difficulty) {
		score += weightDifficultyMatch
	} else if len(p.PreferredJobTypes) == 0 {
		score += weightNoPreference
	}

	switch c.Priority {
	case domain.PriorityEmergency:
		score += weightPriorityEmergency
	case domain.PriorityUrgent:
		score += weightPriorityUrgent
	}

	if p.MinimumJobValue <= 0 || c.EstimatedValue >= p.MinimumJobValue {
		score += weightJobValue
	}

	if p.AutoCallEnabled {
		score += weightAutoCall
	}

	if p.YearsInBusiness > 0 {
		score += math.Min(float64(p.YearsInBusiness)*weightExperiencePerYear, weightExperienceCap)
	}

	if p.BondedAndInsured {
		score += weightInsured
	}

	return int(math.Round(score))
}

// anySkillMatches reports whether a contractor skill matches the required
// one. Matching is case-insensitive substring containment in either
// direction, so "plumbing" matches "emergency plumbing" and vice versa.
func anySkillMatches(have []string, required string) bool {
	req := strings.ToLower(required)
	for _, h := range have {
		hl := strings.ToLower(h)
		if strings.Contains(hl, req) || strings.Contains(req, hl) {
			return true
		}
	}
	return false
}

func difficultyPreferred(preferred []domain.Difficulty, d domain.Difficulty) bool {
	for _, p := range preferred {
		if p == d {
			return true
		}
	}
	return false
}
