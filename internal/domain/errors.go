package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied вызывающий не является стороной, которой разрешен переход
	ErrPermissionDenied = errors.New("domain: permission denied")

	// ErrInvalidTransition переход недопустим из текущего состояния
	ErrInvalidTransition = errors.New("domain: invalid state transition")
)

// TransitionError описывает отклоненный переход вместе с текущим состоянием бронирования
type TransitionError struct {
	Status        BookingStatus
	PaymentStatus PaymentStatus
	Reason        string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s (status=%s, paymentStatus=%s)", ErrInvalidTransition, e.Reason, e.Status, e.PaymentStatus)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func badState(b *Booking, reason string) error {
	return &TransitionError{Status: b.Status, PaymentStatus: b.PaymentStatus, Reason: reason}
}
