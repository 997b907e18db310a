package domain

// CapacityDecision результат проверки лимита услуг
type CapacityDecision struct {
	Allowed      bool
	Limit        int
	CurrentCount int
}

// ServiceLimit лимит услуг как функция состояния подписки.
// Отсутствие подписки и неактивная подписка дают бесплатный лимит,
// serviceLimit учитывается только для ACTIVE
func ServiceLimit(sub *Subscription) int {
	if sub == nil {
		return FreeTierServiceLimit
	}

	switch sub.Status {
	case SubscriptionActive:
		if sub.ServiceLimit < FreeTierServiceLimit {
			return FreeTierServiceLimit
		}
		return sub.ServiceLimit
	case SubscriptionPending, SubscriptionPaymentSent:
		return FreeTierServiceLimit
	default:
		return FreeTierServiceLimit
	}
}

// EvaluateCapacity решает, может ли провайдер с currentCount услугами добавить ещё одну
func EvaluateCapacity(sub *Subscription, currentCount int) CapacityDecision {
	limit := ServiceLimit(sub)
	return CapacityDecision{
		Allowed:      currentCount < limit,
		Limit:        limit,
		CurrentCount: currentCount,
	}
}
