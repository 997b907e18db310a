package subscriptions

import "errors"

var (
	// ErrSubscriptionNotFound возвращается, когда у провайдера нет подписки
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrInvalidState возвращается, когда переход подписки недопустим из текущего статуса
	ErrInvalidState = errors.New("subscription transition is not allowed")

	// ErrAccessDenied возвращается, когда действие доступно только администратору
	ErrAccessDenied = errors.New("access denied")

	// ErrPaymentNotConfigured возвращается, когда получатель оплаты не настроен
	ErrPaymentNotConfigured = errors.New("payment collector is not configured")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
