package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Probe results.
const (
	probeHealthy     = "healthy"
	probeUnhealthy   = "unhealthy"
	probeUnavailable = "unavailable"
)

const readinessTimeout = 5 * time.Second

// LivenessCheck handles GET /health/live
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now()})
}

func (s *Server) probeDatabase(ctx context.Context) string {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return probeUnhealthy
	}
	return probeHealthy
}

// probeRedis reports a missing client as unavailable; the API runs uncached without it.
func (s *Server) probeRedis(ctx context.Context) string {
	if s.redis == nil {
		return probeUnavailable
	}
	if s.redis.Ping(ctx).Err() != nil {
		return probeUnhealthy
	}
	return probeHealthy
}

// ReadinessCheck handles GET /health/ready
// @Summary Readiness probe
// @Description Pings the database and Redis. Returns 503 when either is unhealthy.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	checks := fiber.Map{
		"database": s.probeDatabase(ctx),
		"redis":    s.probeRedis(ctx),
	}
	code, overall := fiber.StatusOK, probeHealthy
	for _, result := range checks {
		if result == probeUnhealthy {
			code, overall = fiber.StatusServiceUnavailable, probeUnhealthy
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"status": overall,
		"checks": checks,
		"time":   time.Now(),
	})
}
