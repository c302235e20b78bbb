package rabbitmq

// Exchange is the direct exchange all notification messages go through.
const Exchange = "notifications"

// Routing keys for the notification queues.
const (
	KeyTrialExpiry = "trial-expiry"
	KeyWelcome     = "welcome"
)

// QueueConfig binds one queue to the exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues lists the queues the notifier worker consumes.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.trial-expiry", RoutingKey: KeyTrialExpiry},
		{QueueName: "notification.welcome", RoutingKey: KeyWelcome},
	}
}
