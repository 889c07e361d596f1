package linkedin

type sendMessageRequest struct {
	Recipients []string    `json:"recipients"`
	Subject    string      `json:"subject,omitempty"`
	Body       messageBody `json:"body"`
}

type messageBody struct {
	Text string `json:"text"`
}
