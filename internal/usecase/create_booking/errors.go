package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrSlotNotAvailable возвращается, когда интервал пересекается с активным бронированием провайдера
	ErrSlotNotAvailable = errors.New("create_booking: requested time conflicts with an existing booking")

	// ErrSelfBooking возвращается, когда провайдер бронирует собственную услугу
	ErrSelfBooking = errors.New("create_booking: provider cannot book own service")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
