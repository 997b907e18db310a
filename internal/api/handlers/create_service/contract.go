package create_service

import (
	"context"

	createService "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_service"
)

type CreateServiceUseCase interface {
	Execute(ctx context.Context, req *createService.Request) (*createService.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
