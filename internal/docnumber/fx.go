package docnumber

import "go.uber.org/fx"

var Module = fx.Module("docnumber",
	fx.Provide(NewGenerator),
)
