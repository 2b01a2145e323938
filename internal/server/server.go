package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"payme-click-gateway/internal/handler"
)

type Server struct {
	echo         *echo.Echo
	paymeHandler *handler.PaymeHandler
	clickHandler *handler.ClickHandler
	orderHandler *handler.OrderHandler
}

func NewServer(paymeHandler *handler.PaymeHandler, clickHandler *handler.ClickHandler, orderHandler *handler.OrderHandler) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:         e,
		paymeHandler: paymeHandler,
		clickHandler: clickHandler,
		orderHandler: orderHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/api/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- payme callbacks --------
	payme := s.echo.Group("/payme-api")
	payme.POST("/order/create", s.orderHandler.CreateOrder)
	payme.GET("/order/status/:orderID", s.orderHandler.OrderStatus)
	payme.POST("/payme/callback", s.paymeHandler.Callback)

	// -------- click callbacks --------
	click := s.echo.Group("/click-api")
	click.POST("/create_invoice", s.clickHandler.CreateInvoice)
	click.POST("/prepare", s.clickHandler.Prepare)
	click.POST("/complete", s.clickHandler.Complete)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
