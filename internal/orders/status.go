package orders

type Status string

const (
	StatusProcessing     Status = "processing"
	StatusBeingDelivered Status = "being delivered"
	StatusDelivered      Status = "delivered"
)
