// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package flags

import (
	"context"
	"testing"
)

func TestStaticResolver(t *testing.T) {
	t.Parallel()

	resolver := NewStaticResolver(map[string][]string{
		"acme": {DiscoverBasic, PerformanceUseMetrics},
		"*":    {DashboardsBasic},
	})

	tests := []struct {
		name string
		flag string
		org  string
		want bool
	}{
		{"enabled for org", DiscoverBasic, "acme", true},
		{"second flag enabled", PerformanceUseMetrics, "acme", true},
		{"not enabled for org", DashboardsMEP, "acme", false},
		{"unknown org", DiscoverBasic, "other", false},
		{"wildcard applies to all orgs", DashboardsBasic, "other", true},
		{"wildcard applies to known orgs", DashboardsBasic, "acme", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := resolver.Has(context.Background(), tt.flag, tt.org, "user"); got != tt.want {
				t.Errorf("Has(%q, %q) = %v, want %v", tt.flag, tt.org, got, tt.want)
			}
		})
	}
}

func TestStaticResolverEmpty(t *testing.T) {
	t.Parallel()

	resolver := NewStaticResolver(nil)
	if resolver.Has(context.Background(), DiscoverBasic, "acme", "user") {
		t.Error("empty resolver should deny all flags")
	}
}
