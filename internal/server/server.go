package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobledger/jobledger/internal/config"
	invoicedomain "github.com/jobledger/jobledger/internal/invoice/domain"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
	quotationdomain "github.com/jobledger/jobledger/internal/quotation/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type ServerParam struct {
	fx.In

	Config       config.Config
	Log          *zap.Logger
	Engine       *gin.Engine
	QuotationSvc quotationdomain.Service
	InvoiceSvc   invoicedomain.Service
	OrgSvc       organizationdomain.Service
}

type Server struct {
	cfg    config.Config
	log    *zap.Logger
	engine *gin.Engine

	quotationSvc quotationdomain.Service
	invoiceSvc   invoicedomain.Service
	orgSvc       organizationdomain.Service
	metrics      *Metrics
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:          p.Config,
		log:          p.Log.Named("server"),
		engine:       p.Engine,
		quotationSvc: p.QuotationSvc,
		invoiceSvc:   p.InvoiceSvc,
		orgSvc:       p.OrgSvc,
		metrics:      NewMetrics(prometheus.DefaultRegisterer),
	}
}

func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1")

	quotations := v1.Group("/quotations")
	quotations.POST("", s.CreateQuotation)
	quotations.GET("", s.ListQuotations)
	quotations.GET("/:id", s.GetQuotationByID)
	quotations.PUT("/:id", s.UpdateQuotation)
	quotations.PATCH("/:id/status", s.UpdateQuotationStatus)
	quotations.DELETE("/:id", s.DeleteQuotation)

	invoices := v1.Group("/invoices")
	invoices.POST("", s.CreateInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.PUT("/:id", s.UpdateInvoice)
	invoices.PATCH("/:id/status", s.UpdateInvoiceStatus)
	invoices.PATCH("/:id/milestones/:milestoneID/status", s.UpdateMilestoneStatus)
	invoices.DELETE("/:id", s.DeleteInvoice)

	v1.GET("/organization", s.GetOrganizationProfile)
	v1.PUT("/organization", s.UpdateOrganizationProfile)
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.RegisterRoutes()
			go func() {
				s.log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)
