package directory

type BusinessType string

const (
	BusinessTypeHotel BusinessType = "hotel"
	BusinessTypeStore BusinessType = "store"
)

type Address struct {
	Line string
	Lat  float64
	Lng  float64
}

type Business struct {
	ID        string
	Type      BusinessType
	OwnerID   string
	ManagerID string
	Name      string
	Address   Address
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type Agent struct {
	UserID             string
	VerificationStatus VerificationStatus
	IsOnline           bool
}

// Eligible reports whether the agent may claim orders.
func (a *Agent) Eligible() bool {
	return a.VerificationStatus == VerificationVerified && a.IsOnline
}
