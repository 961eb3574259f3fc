package models

import "time"

// AccessToken is a short-lived Daraja bearer credential
type AccessToken struct {
	Value     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UsableAt reports whether the token can still be sent at now with the given safety margin
func (t *AccessToken) UsableAt(now time.Time, skew time.Duration) bool {
	if t == nil || t.Value == "" {
		return false
	}
	return now.Add(skew).Before(t.ExpiresAt)
}

// PushRequest is what the vote flow asks the gateway to charge
type PushRequest struct {
	Phone       string
	Amount      int64
	Reference   string
	Description string
}

// PushResult holds the correlation identifiers returned by an accepted push
type PushResult struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPushPayload is the Lipa Na M-Pesa Online process request body
type STKPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// DarajaErrorBody is the error object Daraja returns on rejected requests
type DarajaErrorBody struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}
