package health

import (
	"context"
	"sort"
	"time"

	"github.com/Varun5711/modesta/internal/logger"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name for the auth API as a whole.
const ServiceName = "modesta.auth"

type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker mirrors dependency pings into a gRPC health server. Each
// dependency is reported under its own name; the server-wide status and
// ServiceName are SERVING only when every dependency answers.
type Checker struct {
	server  *grpchealth.Server
	checks  map[string]Pinger
	timeout time.Duration
	log     *logger.Logger
}

func NewChecker(checks map[string]Pinger) *Checker {
	c := &Checker{
		server:  grpchealth.NewServer(),
		checks:  make(map[string]Pinger, len(checks)),
		timeout: 2 * time.Second,
		log:     logger.New("health"),
	}
	for name, p := range checks {
		if p != nil {
			c.checks[name] = p
		}
	}
	c.setAll(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
}

func (c *Checker) Names() []string {
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckOnce pings every dependency and updates the reported statuses. It
// returns whether all of them answered.
func (c *Checker) CheckOnce(ctx context.Context) bool {
	healthy := true
	for _, name := range c.Names() {
		pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.checks[name].Ping(pingCtx)
		cancel()

		if err != nil {
			c.log.Warn("Dependency %s unhealthy: %v", name, err)
			c.server.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
			healthy = false
			continue
		}
		c.server.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", overall)
	c.server.SetServingStatus(ServiceName, overall)
	return healthy
}

// Run checks immediately and then every interval until ctx is done, when
// every status flips to NOT_SERVING.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	c.CheckOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.CheckOnce(ctx)
		}
	}
}

func (c *Checker) setAll(status healthpb.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
	for name := range c.checks {
		c.server.SetServingStatus(name, status)
	}
}
