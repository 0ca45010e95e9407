package handler

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/storefront-cart/internal/core/service"
)

const cartHealthService = "storefront.cart.CartService"

// GRPCHandler exposes the standard gRPC health service. The cart service
// reports SERVING only once the cart has been loaded.
type GRPCHandler struct {
	cartService *service.CartService
	health      *health.Server
}

func NewGRPCHandler(cartService *service.CartService) *GRPCHandler {
	h := &GRPCHandler{
		cartService: cartService,
		health:      health.NewServer(),
	}
	h.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	h.Refresh()
	return h
}

func (h *GRPCHandler) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.health)
}

func (h *GRPCHandler) Refresh() {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if h.cartService.State().Loaded {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(cartHealthService, status)
}

// Shutdown flips every service to NOT_SERVING ahead of GracefulStop.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
}
