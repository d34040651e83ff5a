package client

import (
	"context"

	"github.com/darmiel/chatsts/internal/api"
	"github.com/darmiel/chatsts/internal/buildinfo"
)

func (c *Client) Info(
	ctx context.Context,
) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.url().
		setPath(api.AboutRoute).
		build(), &info)
	return &info, correlation, err
}

// Healthy reports whether the server answers its health check.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	var health struct {
		OK bool `json:"ok"`
	}
	if _, err := c.get(ctx, c.url().
		setPath(api.HealthCheckRoute).
		build(), &health); err != nil {
		return false, err
	}
	return health.OK, nil
}
