package models

const (
	// DefaultPageSize is used when a listing request carries no size.
	DefaultPageSize = 10

	// UserIDHeader carries the acting user id on every API request.
	UserIDHeader = "X-Sharer-User-Id"

	// RateLimitRequests количество запросов пользователя в окне
	RateLimitRequests = 120

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах

	// RateLimitRecheck пауза перед повторной попыткой использовать Redis
	RateLimitRecheck = 60 // секунд

	// ExportSheetName лист в выгрузке бронирований
	ExportSheetName = "Bookings"
)
