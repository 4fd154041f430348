package entities

type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
)

type ReviewRecord struct {
	ID     string
	Status ReviewStatus
}

func (r *ReviewRecord) Approve() {
	r.Status = StatusApproved
}

type Filter struct {
	Status ReviewStatus
}
