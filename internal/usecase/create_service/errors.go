package create_service

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded возвращается, когда провайдер исчерпал лимит услуг
	ErrCapacityExceeded = errors.New("create_service: service limit reached")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_service: invalid input data")

	// ErrConcurrentUpdate возвращается, когда сериализуемая транзакция откатилась из-за параллельного
	// изменения каталога провайдера. Запрос можно повторить
	ErrConcurrentUpdate = errors.New("create_service: concurrent catalog update, retry the request")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_service: internal error")
)

// CapacityError отказ по лимиту услуг с текущими значениями для клиента
type CapacityError struct {
	Limit        int
	CurrentCount int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: limit=%d, current=%d", ErrCapacityExceeded, e.Limit, e.CurrentCount)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
