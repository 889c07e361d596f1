package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/entity"
	"github.com/atlasai/outbound/internal/infra/metrics"
)

var firstIntRe = regexp.MustCompile(`\d+`)

// Scorer assigns a priority score in [0, rules.MaxScore] to leads. Scoring
// is deterministic: the same lead and rules always produce the same score.
type Scorer struct {
	rules ScoringRules
	leads LeadRepository
	log   *zap.Logger
}

func NewScorer(rules ScoringRules, leads LeadRepository, log *zap.Logger) *Scorer {
	return &Scorer{
		rules: rules,
		leads: leads,
		log:   log,
	}
}

// Score computes the additive model over all sub-scores.
func (s *Scorer) Score(lead *entity.Lead) int {
	total := s.scorePosition(lead.Position)
	total += s.scoreIndustry(lead.Industry)
	total += s.scoreLocation(lead.Location)
	total += s.scoreCompanySize(lead.Employees)
	total += s.scoreBuyingSignals(lead)
	total += s.scoreCompleteness(lead)
	total += s.scoreEngagementPotential(lead)

	if total > s.rules.MaxScore {
		total = s.rules.MaxScore
	}
	return total
}

// matchWeight returns the first rule whose pattern occurs in text.
func matchWeight(rules []WeightRule, text string) (int, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if strings.Contains(lower, r.Pattern) {
			return r.Weight, true
		}
	}
	return 0, false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (s *Scorer) scorePosition(position string) int {
	if w, ok := matchWeight(s.rules.Positions, position); ok {
		return w
	}
	lower := strings.ToLower(position)
	if containsAny(lower, s.rules.SeniorKeywords) {
		return s.rules.SeniorFallback
	}
	if containsAny(lower, s.rules.JuniorKeywords) {
		return s.rules.JuniorFallback
	}
	return s.rules.PositionDefault
}

func (s *Scorer) scoreIndustry(industry string) int {
	if w, ok := matchWeight(s.rules.Industries, industry); ok {
		return w
	}
	return s.rules.IndustryDefault
}

func (s *Scorer) scoreLocation(location string) int {
	if w, ok := matchWeight(s.rules.Locations, location); ok {
		return w
	}
	return s.rules.LocationDefault
}

// scoreCompanySize parses the first integer out of the free-text employee
// field and buckets it.
func (s *Scorer) scoreCompanySize(employees string) int {
	match := firstIntRe.FindString(employees)
	if match == "" {
		return s.rules.CompanySizeUnknown
	}
	count, err := strconv.Atoi(match)
	if err != nil {
		return s.rules.CompanySizeUnknown
	}
	for _, b := range s.rules.CompanySize {
		if b.MaxEmployees == 0 || count < b.MaxEmployees {
			return b.Weight
		}
	}
	return s.rules.CompanySizeUnknown
}

func (s *Scorer) scoreBuyingSignals(lead *entity.Lead) int {
	text := strings.ToLower(lead.BuyingSignals + " " + lead.Notes + " " + lead.Company)

	total := 0
	for _, r := range s.rules.BuyingSignals {
		if strings.Contains(text, r.Pattern) {
			total += r.Weight
		}
	}
	if total > s.rules.BuyingSignalsCap {
		total = s.rules.BuyingSignalsCap
	}
	return total
}

func (s *Scorer) scoreCompleteness(lead *entity.Lead) int {
	score := 0
	for _, f := range []string{lead.Name, lead.Email, lead.Company, lead.Position} {
		if f != "" {
			score += s.rules.RequiredFieldWeight
		}
	}
	for _, f := range []string{lead.LinkedInURL, lead.Industry, lead.Location, lead.Phone} {
		if f != "" {
			score += s.rules.OptionalFieldWeight
		}
	}
	return score
}

func (s *Scorer) scoreEngagementPotential(lead *entity.Lead) int {
	score := 0

	if lead.Email != "" && !containsAny(strings.ToLower(lead.Email), s.rules.FreemailDomains) {
		score += s.rules.CorporateEmailBonus
	}
	if lead.LinkedInURL != "" {
		score += s.rules.SocialURLBonus
	}
	if lead.CompanyWebsite != "" {
		score += s.rules.WebsiteBonus
	}
	if lead.Email == "" {
		score -= s.rules.MissingEmailPenalty
	}

	if score < 0 {
		score = 0
	}
	return score
}

// ScoreAll scores every lead whose score is still zero and transitions it to
// scored. Idempotent: a second run finds nothing left to score.
func (s *Scorer) ScoreAll(ctx context.Context) (int, error) {
	leads, err := s.leads.Unscored(ctx)
	if err != nil {
		return 0, err
	}

	scored := 0
	for _, lead := range leads {
		score := s.Score(lead)
		if err := s.leads.UpdateScore(ctx, lead.ID, score); err != nil {
			s.log.Error("failed to store lead score",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
			continue
		}
		scored++
	}

	if scored > 0 {
		metrics.RecordLeadsScored(scored)
		s.log.Info("scored leads", zap.Int("count", scored))
	}
	return scored, nil
}

// TopLeads returns compose-eligible leads at or above minScore, best first,
// ties broken by earliest discovery.
func (s *Scorer) TopLeads(ctx context.Context, limit, minScore int) ([]*entity.Lead, error) {
	return s.leads.TopLeads(ctx, limit, minScore)
}
