package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func NewHealthClient(address string) (healthpb.HealthClient, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}

	return healthpb.NewHealthClient(conn), conn, nil
}

// CheckHealth asks the health service at address for the status of service
// ("" for the whole server) and fails unless it is SERVING.
func CheckHealth(ctx context.Context, address, service string) error {
	client, conn, err := NewHealthClient(address)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", address, err)
	}
	defer conn.Close()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("service %q is %s", service, resp.GetStatus())
	}
	return nil
}
