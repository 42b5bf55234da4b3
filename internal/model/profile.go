package model

// CustomerProfile is returned by GET /me.
type CustomerProfile struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Surname   string  `json:"surname"`
	Email     string  `json:"email"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"createdAt"`
}

// MerchantProfile is returned by GET /merchant/me.
type MerchantProfile struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
	CreatedAt   string `json:"createdAt"`
}
