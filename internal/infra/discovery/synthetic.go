package discovery

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/atlasai/outbound/internal/usecase"
)

var (
	firstNames = []string{
		"James", "Maria", "Wei", "Priya", "Carlos", "Anna", "David", "Fatima",
		"Lucas", "Elena", "Michael", "Sofia", "Ahmed", "Laura", "Daniel",
		"Chen", "Olivia", "Rafael", "Nina", "Thomas",
	}
	lastNames = []string{
		"Smith", "Garcia", "Zhang", "Patel", "Silva", "Muller", "Johnson",
		"Khan", "Oliveira", "Rossi", "Brown", "Santos", "Hassan", "Novak",
		"Kim", "Wilson", "Costa", "Ivanov", "Park", "Lee",
	}
	companyWords = []string{
		"Nimbus", "Vertex", "Lumen", "Atlas", "Beacon", "Forge", "Pulse",
		"Orbit", "Summit", "Cipher", "Nova", "Quantum", "Drift", "Harbor",
	}
	companySuffixes = []string{"Labs", "Systems", "Technologies", "Solutions", "Group", "Software"}
	positions       = []string{
		"CEO", "CTO", "Founder", "VP of Engineering", "VP of Sales",
		"Director of Marketing", "Head of Growth", "Engineering Manager",
		"Product Manager", "CMO", "Owner",
	}
	employeeRanges = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}
	signals        = []string{
		"", "", "", "hiring for sales roles", "recently funded",
		"expanding to new markets", "posted about automation challenges",
	}
)

// SyntheticSource generates plausible lead candidates deterministically
// from a seed. It stands in for a paid data provider; swapping in a real
// one only requires implementing the same interface.
type SyntheticSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *SyntheticSource) Discover(ctx context.Context, industries, locations []string, limitPerQuery int) ([]usecase.LeadCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limitPerQuery <= 0 {
		limitPerQuery = 25
	}
	if len(industries) == 0 {
		industries = []string{"technology"}
	}
	if len(locations) == 0 {
		locations = []string{""}
	}

	var candidates []usecase.LeadCandidate
	for _, industry := range industries {
		for _, location := range locations {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for i := 0; i < limitPerQuery; i++ {
				candidates = append(candidates, s.candidate(industry, location))
			}
		}
	}
	return candidates, nil
}

func (s *SyntheticSource) candidate(industry, location string) usecase.LeadCandidate {
	first := firstNames[s.rnd.Intn(len(firstNames))]
	last := lastNames[s.rnd.Intn(len(lastNames))]
	company := companyWords[s.rnd.Intn(len(companyWords))] + " " + companySuffixes[s.rnd.Intn(len(companySuffixes))]
	slug := strings.ToLower(strings.ReplaceAll(company, " ", ""))

	c := usecase.LeadCandidate{
		Name:     first + " " + last,
		Company:  company,
		Position: positions[s.rnd.Intn(len(positions))],
		Industry: industry,
		Location: location,
		Source:   "synthetic",
	}

	// Roughly 60% of candidates come with a corporate address; the rest
	// split between free mail and no email at all.
	switch roll := s.rnd.Float64(); {
	case roll < 0.6:
		c.Email = fmt.Sprintf("%s.%s@%s.com", strings.ToLower(first), strings.ToLower(last), slug)
	case roll < 0.85:
		c.Email = fmt.Sprintf("%s%s@gmail.com", strings.ToLower(first), strings.ToLower(last))
	}

	if s.rnd.Float64() < 0.7 {
		c.LinkedInURL = fmt.Sprintf("https://linkedin.com/in/%s-%s", strings.ToLower(first), strings.ToLower(last))
	}
	if s.rnd.Float64() < 0.5 {
		c.CompanyWebsite = "https://" + slug + ".com"
	}
	if s.rnd.Float64() < 0.2 {
		c.Phone = fmt.Sprintf("+1415555%04d", s.rnd.Intn(10000))
	}
	c.Employees = employeeRanges[s.rnd.Intn(len(employeeRanges))]
	c.BuyingSignals = signals[s.rnd.Intn(len(signals))]

	return c
}
