package usecase

// Template pools for the message composer. Pool membership is deterministic
// given (tone, role, campaign); only the pick within a pool is randomized.
// Placeholders: {name} {company} {position} {industry} {location}.

type TemplateSet struct {
	SubjectsGeneral []string
	SubjectsCEO     []string
	SubjectsCTO     []string

	OpenersPersonal []string
	OpenersFormal   []string
	OpenersCasual   []string

	IntrosIndustry []string
	IntrosPosition []string
	IntrosGeneral  []string

	ValuePropsAutomation  []string
	ValuePropsGrowth      []string
	ValuePropsCompetitive []string

	SocialProof []string

	CTASoft         []string
	CTADirect       []string
	CTAValueFocused []string

	Closings   []string
	Signatures []string

	FollowUpIntros     []string
	FollowUpValueProps []string
	FollowUpCTA        string
}

func DefaultTemplates() TemplateSet {
	return TemplateSet{
		SubjectsGeneral: []string{
			"Quick question about {company}'s growth strategy",
			"Helping {company} scale with AI automation",
			"{name}, thought you'd find this interesting",
			"Atlas AI solution for {industry} leaders",
			"5-minute chat about {company}'s digital transformation?",
			"AI implementation strategy for {company}",
			"{name}, scaling {company} with intelligent automation",
		},
		SubjectsCEO: []string{
			"{name}, scaling {company} with AI leadership",
			"Strategic AI implementation for {company}",
			"CEO-to-CEO: AI transformation insights",
			"{name}, executive briefing on AI ROI",
			"Board-level AI strategy for {company}",
		},
		SubjectsCTO: []string{
			"Technical deep-dive: AI architecture for {company}",
			"{name}, engineering-first AI implementation",
			"CTO insights: AI infrastructure at scale",
			"Technical roadmap for {company}'s AI journey",
			"{name}, developer-friendly AI integration",
		},

		OpenersPersonal: []string{
			"Hi {name},",
			"Hello {name},",
			"{name},",
			"Hi there {name},",
		},
		OpenersFormal: []string{
			"Dear {name},",
			"Greetings {name},",
		},
		OpenersCasual: []string{
			"Hey {name},",
			"{name} -",
			"Hi {name}!",
		},

		IntrosIndustry: []string{
			"I noticed {company} is making waves in the {industry} space.",
			"Your work at {company} in {industry} caught my attention.",
			"I've been following {company}'s growth in {industry}.",
			"Impressive work you're doing at {company} in the {industry} sector.",
		},
		IntrosPosition: []string{
			"As {position} at {company}, you probably deal with scaling challenges daily.",
			"In your role as {position}, I imagine you're focused on efficient growth.",
			"Leading {company} as {position} must involve constant prioritization.",
		},
		IntrosGeneral: []string{
			"I hope this message finds you well.",
			"I wanted to reach out with a quick thought.",
			"I'm reaching out because I think there's a fit worth exploring.",
		},

		ValuePropsAutomation: []string{
			"Atlas AI helps companies like {company} automate repetitive tasks and increase productivity by 40%.",
			"We've helped similar {industry} companies reduce operational costs by 35% through intelligent automation.",
			"Our AI solutions have enabled {industry} leaders to scale operations without proportional staff increases.",
		},
		ValuePropsGrowth: []string{
			"Atlas AI has helped companies in {industry} increase revenue by an average of 28% in 6 months.",
			"We've enabled {industry} businesses to identify new revenue streams through AI-powered insights.",
			"Companies using Atlas AI report 45% faster customer acquisition in the {industry} space.",
		},
		ValuePropsCompetitive: []string{
			"Atlas AI gives {industry} companies a competitive edge through advanced analytics and automation.",
			"Stay ahead in {industry} with AI-powered decision making and predictive insights.",
			"Join leading {industry} companies already using Atlas AI to outpace competitors.",
		},

		SocialProof: []string{
			"We've helped over 500+ companies achieve similar results.",
			"Companies like TechCorp and InnovateLabs have seen 40% efficiency gains.",
			"Our clients in {industry} consistently report ROI within 90 days.",
			"Leading {industry} companies trust Atlas AI for their automation needs.",
		},

		CTASoft: []string{
			"Would a brief 15-minute call make sense to explore if there's a fit?",
			"Interested in a quick conversation about your current challenges?",
			"Worth a brief chat to see if we can help {company}?",
			"Open to a short discussion about your automation goals?",
		},
		CTADirect: []string{
			"Let's schedule a 20-minute demo this week.",
			"I'd love to show you exactly how this works for {company}.",
			"Can we book 15 minutes this week to discuss your specific needs?",
			"I'll send you a calendar link for a brief demo.",
		},
		CTAValueFocused: []string{
			"I'll show you exactly how {company} can cut costs annually with Atlas AI.",
			"Let me walk you through an ROI projection specific to {company}.",
			"I'll prepare a custom analysis of {company}'s automation potential.",
		},

		Closings: []string{
			"Best regards,",
			"Best,",
			"Thanks,",
			"Looking forward to connecting,",
			"Warm regards,",
		},
		Signatures: []string{
			"Atlas AI Team\nAutomating the Future of Business",
			"Atlas AI Solutions\nIntelligent Automation for Modern Enterprises",
			"The Atlas AI Team\nEmpowering Businesses Through AI",
		},

		FollowUpIntros: []string{
			"I wanted to follow up on my previous message.",
			"Just wanted to circle back on our conversation.",
			"Hope you had a chance to review my previous note.",
			"Following up on my message from last week.",
		},
		FollowUpValueProps: []string{
			"I thought you might be interested in a quick case study from a similar {industry} company.",
			"I've prepared some specific insights that might be valuable for {company}.",
			"Would love to share how we've helped other {industry} leaders achieve similar results.",
		},
		FollowUpCTA: "Would 10 minutes this week work for a brief conversation?",
	}
}
