package subscription

import (
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
)

type DBExecutor = dbmetrics.DBExecutor
