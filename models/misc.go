package models

// ContactInfo is the site-wide contact block shown in the storefront footer.
type ContactInfo struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	About   string `json:"about"`
}

// Feedback is a visitor-submitted message.
type Feedback struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Dashboard aggregates the counters shown on the admin home.
type Dashboard struct {
	Users        int `json:"users"`
	Articles     int `json:"articles"`
	Products     int `json:"products"`
	Orders       int `json:"orders"`
	Comments     int `json:"comments"`
	VisitorCount int `json:"visitor_count"`
}
