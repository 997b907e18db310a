package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceLimit(t *testing.T) {
	tests := []struct {
		name string
		sub  *Subscription
		want int
	}{
		{"no subscription is free tier", nil, 1},
		{"pending ignores limit", &Subscription{Status: SubscriptionPending, ServiceLimit: 10}, 1},
		{"payment sent ignores limit", &Subscription{Status: SubscriptionPaymentSent, ServiceLimit: 10}, 1},
		{"active uses limit", &Subscription{Status: SubscriptionActive, ServiceLimit: 10}, 10},
		{"active with broken limit falls back", &Subscription{Status: SubscriptionActive, ServiceLimit: 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServiceLimit(tt.sub))
		})
	}
}

func TestEvaluateCapacity(t *testing.T) {
	decision := EvaluateCapacity(nil, 1)
	assert.Equal(t, CapacityDecision{Allowed: false, Limit: 1, CurrentCount: 1}, decision)

	decision = EvaluateCapacity(nil, 0)
	assert.True(t, decision.Allowed)

	decision = EvaluateCapacity(&Subscription{Status: SubscriptionActive, ServiceLimit: 5}, 4)
	assert.Equal(t, CapacityDecision{Allowed: true, Limit: 5, CurrentCount: 4}, decision)
}

func TestSubscriptionTransitions(t *testing.T) {
	sub := &Subscription{Status: SubscriptionPending}
	assert.True(t, sub.CanMarkPaymentSent())
	assert.False(t, sub.CanActivate())

	sub.Status = SubscriptionPaymentSent
	assert.False(t, sub.CanMarkPaymentSent())
	assert.True(t, sub.CanActivate())

	sub.Status = SubscriptionActive
	assert.False(t, sub.CanMarkPaymentSent())
	assert.False(t, sub.CanActivate())
}

func TestServiceCategory_IsValid(t *testing.T) {
	assert.True(t, CategoryPlumbing.IsValid())
	assert.False(t, ServiceCategory("ROCKETS").IsValid())
}
