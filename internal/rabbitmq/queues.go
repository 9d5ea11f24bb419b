package rabbitmq

// NotificationsExchange exchange для уведомлений пользователям.
const NotificationsExchange = "notifications"

// BetaDecisionRoutingKey ключ маршрутизации решений по бета-заявкам.
const BetaDecisionRoutingKey = "beta.decision"

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди воркеров уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.beta-decision", RoutingKey: BetaDecisionRoutingKey},
	}
}
