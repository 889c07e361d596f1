package mailgun

type sendMessageResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
