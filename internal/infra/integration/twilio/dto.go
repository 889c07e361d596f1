package twilio

type createMessageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}
