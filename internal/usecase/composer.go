package usecase

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/entity"
)

const (
	ToneAuto         = "auto"
	ToneFormal       = "formal"
	ToneCasual       = "casual"
	ToneProfessional = "professional"
)

// Composer builds personalized draft messages from template pools. Pool
// membership is a pure function of (tone, role, campaign); the pick within a
// pool uses the injected random source so tests can fix the seed.
type Composer struct {
	templates TemplateSet
	messages  MessageRepository
	log       *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewComposer(templates TemplateSet, messages MessageRepository, rnd *rand.Rand, log *zap.Logger) *Composer {
	return &Composer{
		templates: templates,
		messages:  messages,
		rnd:       rnd,
		log:       log,
	}
}

// ResolveTone maps lead fields to a tone. Pure: no randomness.
func ResolveTone(lead *entity.Lead) string {
	position := strings.ToLower(lead.Position)
	industry := strings.ToLower(lead.Industry)

	switch {
	case containsAny(position, []string{"ceo", "founder", "president"}):
		return ToneFormal
	case containsAny(position, []string{"developer", "engineer", "technical"}):
		return ToneCasual
	case strings.Contains(industry, "startup") || strings.Contains(industry, "tech"):
		return ToneCasual
	default:
		return ToneProfessional
	}
}

// PersonalizationScore sums fixed per-field weights. Independent of the
// template text actually chosen.
func PersonalizationScore(lead *entity.Lead) int {
	score := 0
	if lead.Name != "" {
		score += 25
	}
	if lead.Company != "" {
		score += 25
	}
	if lead.Position != "" {
		score += 20
	}
	if lead.Industry != "" {
		score += 15
	}
	if lead.Location != "" {
		score += 10
	}
	if lead.BuyingSignals != "" {
		score += 5
	}
	return score
}

// Compose builds and persists a draft message for the lead.
func (c *Composer) Compose(ctx context.Context, lead *entity.Lead, campaign, tone string) (*entity.Message, error) {
	if tone == ToneAuto || tone == "" {
		tone = ResolveTone(lead)
	}

	subject := c.pick(c.subjectPool(lead))
	body := strings.Join([]string{
		c.pick(c.openerPool(tone)),
		"",
		c.pick(c.introPool(lead)),
		"",
		c.pick(c.valuePropPool(campaign)),
		"",
		c.pick(c.templates.SocialProof),
		"",
		c.pick(c.ctaPool(lead, tone)),
		"",
		c.pick(c.templates.Closings),
		c.pick(c.templates.Signatures),
	}, "\n")

	msg := entity.NewMessage(
		lead.ID,
		personalize(subject, lead),
		personalize(body, lead),
		tone,
		campaign,
		entity.MessageTypeInitial,
		PersonalizationScore(lead),
	)

	if err := c.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ComposeFollowUp builds a lighter-weight reply referencing the prior
// subject with a "Re:" prefix.
func (c *Composer) ComposeFollowUp(ctx context.Context, lead *entity.Lead, previous *entity.Message) (*entity.Message, error) {
	body := strings.Join([]string{
		c.pick(c.openerPool(ToneProfessional)),
		"",
		c.pick(c.templates.FollowUpIntros),
		"",
		c.pick(c.templates.FollowUpValueProps),
		"",
		c.templates.FollowUpCTA,
		"",
		c.pick(c.templates.Closings),
		c.pick(c.templates.Signatures),
	}, "\n")

	subject := "Re: " + previous.Subject

	msg := entity.NewMessage(
		lead.ID,
		subject,
		personalize(body, lead),
		ToneProfessional,
		previous.Campaign,
		entity.MessageTypeFollowUp,
		PersonalizationScore(lead),
	)

	if err := c.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ComposeBatch drafts one message per lead for a campaign. Individual
// failures are logged and skipped.
func (c *Composer) ComposeBatch(ctx context.Context, leads []*entity.Lead, campaign string) []*entity.Message {
	messages := make([]*entity.Message, 0, len(leads))
	for _, lead := range leads {
		msg, err := c.Compose(ctx, lead, campaign, ToneAuto)
		if err != nil {
			c.log.Error("failed to compose message",
				zap.String("lead_id", lead.ID),
				zap.String("campaign", campaign),
				zap.Error(err),
			)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (c *Composer) pick(pool []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pool[c.rnd.Intn(len(pool))]
}

func (c *Composer) subjectPool(lead *entity.Lead) []string {
	position := strings.ToLower(lead.Position)
	switch {
	case strings.Contains(position, "ceo") || strings.Contains(position, "founder"):
		return c.templates.SubjectsCEO
	case strings.Contains(position, "cto") || strings.Contains(position, "technical"):
		return c.templates.SubjectsCTO
	default:
		return c.templates.SubjectsGeneral
	}
}

func (c *Composer) openerPool(tone string) []string {
	switch tone {
	case ToneFormal:
		return c.templates.OpenersFormal
	case ToneCasual:
		return c.templates.OpenersCasual
	default:
		return c.templates.OpenersPersonal
	}
}

func (c *Composer) introPool(lead *entity.Lead) []string {
	var pool []string
	if lead.Industry != "" && lead.Company != "" {
		pool = append(pool, c.templates.IntrosIndustry...)
	}
	if lead.Position != "" && lead.Company != "" {
		pool = append(pool, c.templates.IntrosPosition...)
	}
	if len(pool) == 0 {
		pool = c.templates.IntrosGeneral
	}
	return pool
}

func (c *Composer) valuePropPool(campaign string) []string {
	switch campaign {
	case "automation":
		return c.templates.ValuePropsAutomation
	case "growth":
		return c.templates.ValuePropsGrowth
	case "competitive":
		return c.templates.ValuePropsCompetitive
	default:
		pool := make([]string, 0, len(c.templates.ValuePropsAutomation)+len(c.templates.ValuePropsGrowth))
		pool = append(pool, c.templates.ValuePropsAutomation...)
		pool = append(pool, c.templates.ValuePropsGrowth...)
		return pool
	}
}

func (c *Composer) ctaPool(lead *entity.Lead, tone string) []string {
	position := strings.ToLower(lead.Position)
	switch {
	case strings.Contains(position, "ceo") || strings.Contains(position, "founder"):
		return c.templates.CTAValueFocused
	case tone == ToneCasual:
		return c.templates.CTASoft
	default:
		return c.templates.CTADirect
	}
}

// personalize substitutes placeholders. Every token resolves to either the
// lead's value or a static fallback; no raw {token} survives.
func personalize(text string, lead *entity.Lead) string {
	name := lead.FirstName()
	if name == "" {
		name = "there"
	}
	replacer := strings.NewReplacer(
		"{name}", name,
		"{company}", fallback(lead.Company, "your company"),
		"{position}", fallback(lead.Position, "your role"),
		"{industry}", fallback(lead.Industry, "your industry"),
		"{location}", fallback(lead.Location, "your area"),
	)
	return replacer.Replace(text)
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
