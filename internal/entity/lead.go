package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusScored    LeadStatus = "scored"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusEngaged   LeadStatus = "engaged"
	LeadStatusInvalid   LeadStatus = "invalid"
)

type ResponseStatus string

const (
	ResponseNone         ResponseStatus = "none"
	ResponseOpened       ResponseStatus = "opened"
	ResponseClicked      ResponseStatus = "clicked"
	ResponseReplied      ResponseStatus = "replied"
	ResponseInvalidEmail ResponseStatus = "invalid_email"
)

// Lead is a contact record targeted for outreach. Leads are never deleted,
// only status-transitioned. Identity is (email) OR (name, company).
type Lead struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email,omitempty"`
	Company        string         `json:"company,omitempty"`
	Position       string         `json:"position,omitempty"`
	Industry       string         `json:"industry,omitempty"`
	Location       string         `json:"location,omitempty"`
	LinkedInURL    string         `json:"linkedin_url,omitempty"`
	CompanyWebsite string         `json:"company_website,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Employees      string         `json:"employees,omitempty"`
	BuyingSignals  string         `json:"buying_signals,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Source         string         `json:"source,omitempty"`
	Score          int            `json:"score"`
	Status         LeadStatus     `json:"status"`
	ResponseStatus ResponseStatus `json:"response_status"`
	FoundAt        time.Time      `json:"found_at"`
	LastContacted  *time.Time     `json:"last_contacted,omitempty"`
}

// Factory
func NewLead(name, email, company, position, industry, location, source string) (*Lead, error) {
	lead := &Lead{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(name),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Company:        strings.TrimSpace(company),
		Position:       strings.TrimSpace(position),
		Industry:       industry,
		Location:       location,
		Source:         source,
		Status:         LeadStatusNew,
		ResponseStatus: ResponseNone,
		FoundAt:        time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.Email == "" && l.Company == "" {
		return errors.New("either email or company is required")
	}
	return nil
}

// FirstName returns the first token of the lead's name, for greetings.
func (l *Lead) FirstName() string {
	fields := strings.Fields(l.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Contactable reports whether any outreach channel can reach this lead.
func (l *Lead) Contactable() bool {
	return l.Email != "" || l.LinkedInURL != "" || l.Phone != ""
}
