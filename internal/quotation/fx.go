package quotation

import (
	"github.com/jobledger/jobledger/internal/quotation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quotation.service",
	fx.Provide(service.NewService),
)
