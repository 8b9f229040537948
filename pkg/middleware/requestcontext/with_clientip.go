package requestcontext

import (
	"context"
	"log/slog"
	"net"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// TrustedProxiesIP lists the CIDR ranges of proxies in front of the portal.
	// The client IP is the last `X-Forwarded-For` entry outside these ranges.
	TrustedProxiesIP []string `mapstructure:"trusted_proxies_ip"`

	// TrustedHeader names a header holding the client IP (e.g. X-Real-IP).
	// It takes precedence over `X-Forwarded-For` when it holds a valid IP.
	TrustedHeader string `mapstructure:"trusted_proxies_header"`

	// EnableRejectMalformedRequest answers 403 when a proxied request has no
	// usable client IP.
	EnableRejectMalformedRequest bool `mapstructure:"enable_reject_malformed_request"`
}

// WithClientIP stores the caller's IP in the request context. The portal
// records it as the node IP during signup.
func WithClientIP(config WithClientIPConfig) (Option, error) {
	proxies, err := parseCIDRs(config.TrustedProxiesIP)
	if err != nil {
		return nil, errors.Wrap(err, "invalid trusted proxies")
	}

	trusted := func(ip net.IP) bool {
		return ip != nil && lo.ContainsBy(proxies, func(n *net.IPNet) bool { return n.Contains(ip) })
	}

	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		if config.TrustedHeader != "" {
			if ip := net.ParseIP(c.Get(config.TrustedHeader)); ip != nil {
				return context.WithValue(ctx, clientIPKey{}, ip.String()), nil
			}
		}

		forwarded := c.IPs()
		if len(forwarded) == 0 {
			return context.WithValue(ctx, clientIPKey{}, c.IP()), nil
		}

		if len(proxies) > 0 {
			for i := len(forwarded) - 1; i >= 0; i-- {
				if ip := net.ParseIP(forwarded[i]); ip != nil && !trusted(ip) {
					return context.WithValue(ctx, clientIPKey{}, ip.String()), nil
				}
			}
		}

		if config.EnableRejectMalformedRequest && net.ParseIP(forwarded[0]) == nil {
			logger.WarnContext(ctx, "Malformed forwarded address, rejecting request",
				slog.String("event", "requestcontext/malformed_forwarded_for"),
				slog.String("ip", c.IP()),
				slog.Any("ips", forwarded),
			)
			return nil, rejectError{status: fiber.StatusForbidden, message: "not allowed to access"}
		}
		return context.WithValue(ctx, clientIPKey{}, forwarded[0]), nil
	}, nil
}

// GetClientIP returns the IP stored by WithClientIP, or "".
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

func parseCIDRs(ranges []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(ranges))
	for _, r := range ranges {
		_, ipnet, err := net.ParseCIDR(r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse CIDR for %q", r)
		}
		nets = append(nets, ipnet)
	}
	return nets, nil
}
