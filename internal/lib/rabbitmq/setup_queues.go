package rabbitmq

import "github.com/magabrotheeeer/content-marketplace/internal/models"

// QueueConfig описывает очередь и ключ маршрутизации, по которому она привязана.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// MarketplaceQueues возвращает очереди потребителей доменных событий.
func MarketplaceQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "moderation.identity_submitted", RoutingKey: models.RoutingIdentitySubmitted},
		{QueueName: "notification.identity_reviewed", RoutingKey: models.RoutingReviewDecided},
		{QueueName: "analytics.entitlements", RoutingKey: "entitlement.*"},
	}
}
