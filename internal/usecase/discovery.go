package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/config"
	"github.com/atlasai/outbound/internal/entity"
	"github.com/atlasai/outbound/internal/infra/metrics"
)

// Finder pulls candidates from the discovery source and persists the ones
// that pass validation. Duplicates (by email) are skipped, not errors: the
// same candidate surfacing across queries is expected.
type Finder struct {
	source DiscoverySource
	leads  LeadRepository
	cfg    config.Discovery
	log    *zap.Logger
}

func NewFinder(source DiscoverySource, leads LeadRepository, cfg config.Discovery, log *zap.Logger) *Finder {
	return &Finder{source: source, leads: leads, cfg: cfg, log: log}
}

// Run executes one discovery pass and returns how many new leads were
// stored.
func (f *Finder) Run(ctx context.Context) (int, error) {
	candidates, err := f.source.Discover(ctx, f.cfg.Industries, f.cfg.Locations, f.cfg.LeadsPerQuery)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, c := range candidates {
		lead, err := entity.NewLead(c.Name, c.Email, c.Company, c.Position, c.Industry, c.Location, c.Source)
		if err != nil {
			f.log.Debug("discarding invalid candidate",
				zap.String("name", c.Name), zap.Error(err))
			continue
		}
		lead.LinkedInURL = c.LinkedInURL
		lead.CompanyWebsite = c.CompanyWebsite
		lead.Phone = c.Phone
		lead.Employees = c.Employees
		lead.BuyingSignals = c.BuyingSignals

		if err := f.leads.Create(ctx, lead); err != nil {
			if errors.Is(err, ErrDuplicateLead) {
				continue
			}
			return created, err
		}
		created++
	}

	metrics.RecordLeadsDiscovered(created)
	f.log.Info("discovery pass complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("created", created),
	)
	return created, nil
}
