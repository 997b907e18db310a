package domain

import (
	"fmt"
	"time"
)

// StateChange допустимый переход бронирования. From* используются как условие
// compare-and-swap при обновлении строки
type StateChange struct {
	FromStatus  BookingStatus
	FromPayment PaymentStatus
	ToStatus    BookingStatus
	ToPayment   PaymentStatus
}

func (b *Booking) change(toStatus BookingStatus, toPayment PaymentStatus) StateChange {
	return StateChange{
		FromStatus:  b.Status,
		FromPayment: b.PaymentStatus,
		ToStatus:    toStatus,
		ToPayment:   toPayment,
	}
}

// PlanStatusChange проверяет смену статуса пользователем callerID в момент now.
//
//	PENDING   -> CONFIRMED  провайдер
//	PENDING   -> CANCELLED  провайдер или клиент
//	CONFIRMED -> CANCELLED  провайдер или клиент, пока EndTime в будущем
//	CONFIRMED -> COMPLETED  провайдер, когда EndTime прошло
//
// CANCELLED и COMPLETED терминальные.
func (b *Booking) PlanStatusChange(callerID int64, to BookingStatus, now time.Time) (StateChange, error) {
	if !b.IsParty(callerID) {
		return StateChange{}, ErrPermissionDenied
	}
	isProvider := callerID == b.ProviderID

	if b.Status.IsTerminal() {
		return StateChange{}, badState(b, fmt.Sprintf("booking is %s", b.Status))
	}

	switch {
	case b.Status == StatusPending && to == StatusConfirmed:
		if !isProvider {
			return StateChange{}, fmt.Errorf("%w: only the provider can confirm a booking", ErrPermissionDenied)
		}

	case to == StatusCancelled:
		if b.Status == StatusConfirmed && !now.Before(b.EndTime) {
			return StateChange{}, badState(b, "cannot cancel a past appointment")
		}

	case b.Status == StatusConfirmed && to == StatusCompleted:
		if !isProvider {
			return StateChange{}, fmt.Errorf("%w: only the provider can complete a booking", ErrPermissionDenied)
		}
		if now.Before(b.EndTime) {
			return StateChange{}, badState(b, "appointment has not ended yet")
		}

	default:
		return StateChange{}, badState(b, fmt.Sprintf("transition to %s is not allowed", to))
	}

	return b.change(to, b.PaymentStatus), nil
}

// PlanMarkPaid клиент сообщает, что оплатил по QR-коду. Повторный вызов - ошибка, а не no-op
func (b *Booking) PlanMarkPaid(callerID int64) (StateChange, error) {
	if callerID != b.CustomerID {
		return StateChange{}, ErrPermissionDenied
	}
	if b.Status == StatusCancelled {
		return StateChange{}, badState(b, "booking is cancelled")
	}
	if b.PaymentStatus != PaymentUnpaid {
		return StateChange{}, badState(b, "payment is already marked")
	}

	return b.change(b.Status, PaymentCustomerMarkedPaid), nil
}

// PlanConfirmPayment провайдер подтверждает получение оплаты.
// Подтверждение оплаты заодно подтверждает бронирование: PENDING переходит в CONFIRMED,
// COMPLETED остается COMPLETED
func (b *Booking) PlanConfirmPayment(callerID int64) (StateChange, error) {
	if callerID != b.ProviderID {
		return StateChange{}, ErrPermissionDenied
	}
	if b.Status == StatusCancelled {
		return StateChange{}, badState(b, "booking is cancelled")
	}
	if b.PaymentStatus != PaymentCustomerMarkedPaid {
		return StateChange{}, badState(b, "payment has not been marked by the customer")
	}

	toStatus := b.Status
	if toStatus == StatusPending {
		toStatus = StatusConfirmed
	}

	return b.change(toStatus, PaymentProviderConfirmed), nil
}
