package subscription

import "errors"

var (
	// ErrSubscriptionNotFound возвращается, когда у провайдера нет подписки
	ErrSubscriptionNotFound = errors.New("subscription.repository: subscription not found")

	// ErrStateChanged возвращается, когда статус подписки не совпал с ожидаемым при обновлении
	ErrStateChanged = errors.New("subscription.repository: subscription state changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("subscription.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("subscription.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("subscription.repository: failed to scan row")
)
