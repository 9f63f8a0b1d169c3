package kafka

// Topics для Kafka
const (
	TopicOrderEvents     = "foodshop.order.events"
	TopicDeadLetterQueue = "foodshop.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)
