// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
)

// PingChecker reports a dependency reachable through ping. A failing
// non-critical dependency degrades instead of failing readiness.
type PingChecker struct {
	name     string
	ping     func(ctx context.Context) error
	critical bool
}

func NewPingChecker(name string, critical bool, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, ping: ping, critical: critical}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if c.ping == nil {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	if err := c.ping(ctx); err != nil {
		status := StatusDegraded
		if c.critical {
			status = StatusUnhealthy
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "reachable"}
}

// ProviderChecker reports how many completion providers are configured.
// Without providers Sage still answers from fallbacks, so it only degrades.
type ProviderChecker struct {
	names func() []string
}

func NewProviderChecker(names func() []string) *ProviderChecker {
	return &ProviderChecker{names: names}
}

func (c *ProviderChecker) Name() string { return "llm_providers" }

func (c *ProviderChecker) Check(context.Context) CheckResult {
	names := c.names()
	if len(names) == 0 {
		return CheckResult{Status: StatusDegraded, Message: "no providers configured, using fallback replies"}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d configured: %v", len(names), names)}
}
