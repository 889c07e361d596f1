package usecase

// WeightRule is one (pattern, weight) pair. Patterns are matched as
// case-insensitive substrings in declaration order; the first hit wins.
type WeightRule struct {
	Pattern string
	Weight  int
}

// ScoringRules is the full weight configuration of the scoring engine.
// Rules are plain data so tests and the optimization pass can evaluate a
// table in isolation.
type ScoringRules struct {
	Positions []WeightRule
	// SeniorFallback applies when no position rule matched but the title
	// contains a senior keyword; JuniorFallback likewise for junior ones.
	SeniorKeywords  []string
	SeniorFallback  int
	JuniorKeywords  []string
	JuniorFallback  int
	PositionDefault int

	Industries      []WeightRule
	IndustryDefault int

	Locations       []WeightRule
	LocationDefault int

	// CompanySize buckets keyed by maximum headcount, evaluated in order.
	CompanySize        []SizeBucket
	CompanySizeUnknown int

	BuyingSignals    []WeightRule
	BuyingSignalsCap int

	RequiredFieldWeight int
	OptionalFieldWeight int

	CorporateEmailBonus int
	SocialURLBonus      int
	WebsiteBonus        int
	MissingEmailPenalty int

	FreemailDomains []string

	MaxScore int
}

type SizeBucket struct {
	MaxEmployees int // 0 means no upper bound
	Weight       int
}

// DefaultScoringRules returns the stock weight tables.
func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		Positions: []WeightRule{
			{"ceo", 100},
			{"founder", 100},
			{"cto", 95},
			{"owner", 95},
			{"cmo", 90},
			{"vp", 85},
			{"director", 80},
			{"head", 75},
			{"manager", 70},
			{"lead", 65},
		},
		SeniorKeywords:  []string{"chief", "senior", "principal"},
		SeniorFallback:  85,
		JuniorKeywords:  []string{"junior", "assistant", "coordinator"},
		JuniorFallback:  30,
		PositionDefault: 50,

		Industries: []WeightRule{
			{"artificial intelligence", 100},
			{"software development", 95},
			{"fintech", 95},
			{"cybersecurity", 95},
			{"saas", 95},
			{"digital marketing", 90},
			{"healthcare technology", 90},
			{"cloud computing", 90},
			{"e-commerce", 85},
			{"technology", 80},
		},
		IndustryDefault: 40,

		Locations: []WeightRule{
			{"silicon valley", 100},
			{"san francisco", 95},
			{"new york", 90},
			{"seattle", 90},
			{"austin", 85},
			{"boston", 85},
			{"los angeles", 80},
			{"united states", 80},
			{"chicago", 75},
			{"miami", 70},
		},
		LocationDefault: 30,

		CompanySize: []SizeBucket{
			{50, 90},   // startup
			{200, 85},  // small
			{1000, 75}, // medium
			{5000, 60}, // large
			{0, 50},    // enterprise
		},
		CompanySizeUnknown: 20,

		BuyingSignals: []WeightRule{
			{"hiring", 20},
			{"funding", 25},
			{"expansion", 15},
			{"new product", 20},
			{"technology investment", 25},
			{"digital transformation", 30},
			{"automation", 25},
			{"ai adoption", 30},
		},
		BuyingSignalsCap: 100,

		RequiredFieldWeight: 20,
		OptionalFieldWeight: 5,

		CorporateEmailBonus: 15,
		SocialURLBonus:      10,
		WebsiteBonus:        10,
		MissingEmailPenalty: 30,

		FreemailDomains: []string{"gmail", "yahoo", "hotmail", "outlook"},

		MaxScore: 1000,
	}
}
