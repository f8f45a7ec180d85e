package kafka

// TopicSaleEvents carries every sale lifecycle event, keyed by sale
const TopicSaleEvents = "sale-events"

// Message headers
const (
	headerEventType = "event_type"
	headerEventID   = "event_id"
)
