package models

// GatewaySettings is the single tenant-level settings record. Values here
// take precedence over environment configuration; either source must yield
// a merchant id and base URL before any gateway call is attempted.
type GatewaySettings struct {
	MerchantID        string `bson:"merchantId" json:"merchantId"`
	BaseURL           string `bson:"baseUrl" json:"baseUrl"`
	PrimaryCalendarID string `bson:"primaryCalendarId" json:"primaryCalendarId"`
}
