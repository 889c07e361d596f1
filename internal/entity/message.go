package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessageStatusDraft  MessageStatus = "draft"
	MessageStatusSent   MessageStatus = "sent"
	MessageStatusFailed MessageStatus = "failed"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryBounced DeliveryStatus = "bounced"
	DeliveryFailed  DeliveryStatus = "failed"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelLinkedIn Channel = "linkedin"
	ChannelWhatsApp Channel = "whatsapp"
)

type MessageType string

const (
	MessageTypeInitial  MessageType = "initial"
	MessageTypeFollowUp MessageType = "follow_up"
)

// Message is a composed outreach message belonging to exactly one Lead.
// The engagement timestamps (OpenedAt, ClickedAt, RepliedAt) are
// first-write-wins: once set they are never changed, and a message with
// RepliedAt set is terminal.
type Message struct {
	ID                   string         `json:"id"`
	LeadID               string         `json:"lead_id"`
	Subject              string         `json:"subject"`
	Body                 string         `json:"body"`
	Tone                 string         `json:"tone"`
	Campaign             string         `json:"campaign"`
	MessageType          MessageType    `json:"message_type"`
	PersonalizationScore int            `json:"personalization_score"`
	Status               MessageStatus  `json:"status"`
	DeliveryStatus       DeliveryStatus `json:"delivery_status"`
	Channel              Channel        `json:"channel,omitempty"`
	TrackingID           string         `json:"tracking_id,omitempty"`
	ErrorMessage         string         `json:"error_message,omitempty"`
	GeneratedAt          time.Time      `json:"generated_at"`
	SentAt               *time.Time     `json:"sent_at,omitempty"`
	OpenedAt             *time.Time     `json:"opened_at,omitempty"`
	ClickedAt            *time.Time     `json:"clicked_at,omitempty"`
	RepliedAt            *time.Time     `json:"replied_at,omitempty"`
}

func NewMessage(leadID, subject, body, tone, campaign string, msgType MessageType, personalization int) *Message {
	return &Message{
		ID:                   uuid.New().String(),
		LeadID:               leadID,
		Subject:              subject,
		Body:                 body,
		Tone:                 tone,
		Campaign:             campaign,
		MessageType:          msgType,
		PersonalizationScore: personalization,
		Status:               MessageStatusDraft,
		DeliveryStatus:       DeliveryPending,
		GeneratedAt:          time.Now(),
	}
}

func (m *Message) IsOpened() bool  { return m.OpenedAt != nil }
func (m *Message) IsClicked() bool { return m.ClickedAt != nil }
func (m *Message) IsReplied() bool { return m.RepliedAt != nil }
