// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package links

import (
	"net/url"
	"strings"
	"testing"

	"github.com/faultline-hq/faultline/internal/models"
)

func TestActivityTabFromGroupLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "trailing slash",
			link: "https://x/org/issues/1/",
			want: "https://x/org/issues/1/activity/",
		},
		{
			name: "no trailing slash",
			link: "https://x/org/issues/1",
			want: "https://x/org/issues/1/activity/",
		},
		{
			name: "query string preserved",
			link: "https://x/org/issues/1/?referrer=alert_email",
			want: "https://x/org/issues/1/activity/?referrer=alert_email",
		},
		{
			name: "multiple trailing slashes collapsed",
			link: "https://x/org/issues/1///",
			want: "https://x/org/issues/1/activity/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ActivityTabFromGroupLink(tt.link)
			if err != nil {
				t.Fatalf("ActivityTabFromGroupLink(%q) returned error: %v", tt.link, err)
			}
			if got != tt.want {
				t.Errorf("ActivityTabFromGroupLink(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestEmailExtraParams(t *testing.T) {
	t.Parallel()

	rules := []models.NotificationRuleDetails{
		{ID: 12, Label: "High error rate"},
		{ID: 34, Label: "P95 regression"},
	}

	params := EmailExtraParams("alert_email", "production", rules, 1656964800000)

	if len(params) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(params))
	}

	for _, rule := range rules {
		suffix, ok := params[rule.ID]
		if !ok {
			t.Fatalf("missing entry for rule %d", rule.ID)
		}
		if !strings.HasPrefix(suffix, "?") {
			t.Errorf("suffix %q should start with '?'", suffix)
		}

		values, err := url.ParseQuery(strings.TrimPrefix(suffix, "?"))
		if err != nil {
			t.Fatalf("suffix %q is not a valid query string: %v", suffix, err)
		}
		if got := values.Get("alert_timestamp"); got != "1656964800000" {
			t.Errorf("alert_timestamp = %q, want fixed caller-supplied value", got)
		}
		if got := values.Get("referrer"); got != "alert_email" {
			t.Errorf("referrer = %q, want alert_email", got)
		}
		if got := values.Get("alert_type"); got != "email" {
			t.Errorf("alert_type = %q, want email", got)
		}
		if got := values.Get("environment"); got != "production" {
			t.Errorf("environment = %q, want production", got)
		}
	}
}

func TestEmailExtraParamsDefaults(t *testing.T) {
	t.Parallel()

	rules := []models.NotificationRuleDetails{{ID: 7}}

	params := EmailExtraParams("", "", rules, 0)
	values, err := url.ParseQuery(strings.TrimPrefix(params[7], "?"))
	if err != nil {
		t.Fatalf("invalid query string: %v", err)
	}

	if got := values.Get("referrer"); got != DefaultEmailReferrer {
		t.Errorf("referrer = %q, want default %q", got, DefaultEmailReferrer)
	}
	if values.Has("environment") {
		t.Error("environment should be omitted when empty")
	}
	if values.Get("alert_timestamp") == "" || values.Get("alert_timestamp") == "0" {
		t.Errorf("alert_timestamp = %q, want generated wall-clock value", values.Get("alert_timestamp"))
	}
}

func TestGroupSettingsLink(t *testing.T) {
	t.Parallel()

	resolver, err := NewBaseResolver("https://faultline.example.com")
	if err != nil {
		t.Fatalf("NewBaseResolver: %v", err)
	}

	group := models.Group{
		ID:           42,
		Organization: models.Organization{Slug: "acme"},
	}

	t.Run("without rules", func(t *testing.T) {
		t.Parallel()
		got := resolver.GroupSettingsLink(group, "", nil, 0)
		want := "https://faultline.example.com/organizations/acme/issues/42/"
		if got != want {
			t.Errorf("GroupSettingsLink = %q, want %q", got, want)
		}
	})

	t.Run("with rules", func(t *testing.T) {
		t.Parallel()
		rules := []models.NotificationRuleDetails{{ID: 9}}
		got := resolver.GroupSettingsLink(group, "staging", rules, 1656964800000)
		if !strings.HasPrefix(got, "https://faultline.example.com/organizations/acme/issues/42/?") {
			t.Errorf("unexpected link prefix: %q", got)
		}
		if !strings.Contains(got, "alert_rule_id=9") {
			t.Errorf("link %q should carry alert_rule_id", got)
		}
		if !strings.Contains(got, "environment=staging") {
			t.Errorf("link %q should carry environment", got)
		}
	})
}

func TestIntegrationLink(t *testing.T) {
	t.Parallel()

	resolver, err := NewBaseResolver("https://faultline.example.com")
	if err != nil {
		t.Fatalf("NewBaseResolver: %v", err)
	}

	got := resolver.IntegrationLink(models.Organization{Slug: "acme"}, "slack")
	want := "https://faultline.example.com/settings/acme/integrations/slack/?referrer=alert_email"
	if got != want {
		t.Errorf("IntegrationLink = %q, want %q", got, want)
	}
}

func TestRuleURL(t *testing.T) {
	t.Parallel()

	resolver, err := NewBaseResolver("https://faultline.example.com")
	if err != nil {
		t.Fatalf("NewBaseResolver: %v", err)
	}

	group := models.Group{Organization: models.Organization{Slug: "acme"}}
	got := resolver.RuleURL(models.Rule{ID: 3}, group, models.Project{Slug: "backend"})
	want := "https://faultline.example.com/organizations/acme/alerts/rules/backend/3/"
	if got != want {
		t.Errorf("RuleURL = %q, want %q", got, want)
	}
}

func TestNewBaseResolverRejectsRelative(t *testing.T) {
	t.Parallel()

	if _, err := NewBaseResolver("/just/a/path"); err == nil {
		t.Error("expected error for relative base URL")
	}
}
