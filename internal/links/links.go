// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package links builds the absolute URLs and query-string suffixes embedded
// in notification emails. Every link carries attribution metadata (referrer,
// alert type, rule id, timestamp) so product analytics can tell which email
// surface brought a recipient back in.
package links

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/faultline-hq/faultline/internal/models"
)

// DefaultEmailReferrer tags links whose click origin is an alert email.
const DefaultEmailReferrer = "alert_email"

// emailAlertType is the alert_type query value for email-delivered alerts.
const emailAlertType = "email"

// BaseResolver renders relative paths as absolute URLs against the
// deployment's configured base URL.
type BaseResolver struct {
	base *url.URL
}

// NewBaseResolver parses the configured base URL. The path component of the
// base is ignored; links are always rooted at the host.
func NewBaseResolver(baseURL string) (*BaseResolver, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	return &BaseResolver{base: &url.URL{Scheme: u.Scheme, Host: u.Host}}, nil
}

// Absolute turns a relative path (with optional query suffix) into an
// absolute URL.
func (r *BaseResolver) Absolute(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		// Fall back to naive concatenation for paths url.Parse rejects.
		return r.base.String() + path
	}
	return r.base.ResolveReference(ref).String()
}

// ActivityTabFromGroupLink rewrites a group permalink to its activity
// sub-view, inserting the path segment before any trailing slash and
// preserving scheme, host, query and fragment.
func ActivityTabFromGroupLink(groupLink string) (string, error) {
	u, err := url.Parse(groupLink)
	if err != nil {
		return "", fmt.Errorf("invalid group link %q: %w", groupLink, err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/activity/"
	return u.String(), nil
}

// EmailExtraParams builds, per alert rule, the query-string suffix appended
// to links in alert emails. The timestamp is the caller-supplied alert time
// in milliseconds, or the current wall clock when zero, so retried email
// deliveries keep their original attribution time.
func EmailExtraParams(referrer, environment string, ruleDetails []models.NotificationRuleDetails, alertTimestamp int64) map[int64]string {
	if referrer == "" {
		referrer = DefaultEmailReferrer
	}
	if alertTimestamp == 0 {
		alertTimestamp = time.Now().UnixMilli()
	}

	params := make(map[int64]string, len(ruleDetails))
	for _, rule := range ruleDetails {
		values := url.Values{}
		values.Set("referrer", referrer)
		values.Set("alert_type", emailAlertType)
		values.Set("alert_timestamp", strconv.FormatInt(alertTimestamp, 10))
		values.Set("alert_rule_id", strconv.FormatInt(rule.ID, 10))
		if environment != "" {
			values.Set("environment", environment)
		}
		params[rule.ID] = "?" + values.Encode()
	}
	return params
}

// GroupSettingsLink returns the absolute link to a group's detail page,
// carrying the first rule's email attribution parameters when rules are
// present.
func (r *BaseResolver) GroupSettingsLink(group models.Group, environment string, ruleDetails []models.NotificationRuleDetails, alertTimestamp int64) string {
	base := r.Absolute(group.PermalinkPath())
	if len(ruleDetails) == 0 || ruleDetails[0].ID == 0 {
		return base
	}
	extra := EmailExtraParams(DefaultEmailReferrer, environment, ruleDetails, alertTimestamp)
	return base + extra[ruleDetails[0].ID]
}

// IntegrationLink returns the absolute settings link for an integration,
// tagged with the email referrer.
func (r *BaseResolver) IntegrationLink(org models.Organization, integrationSlug string) string {
	return r.Absolute(fmt.Sprintf("/settings/%s/integrations/%s/?referrer=%s",
		org.Slug, integrationSlug, DefaultEmailReferrer))
}

// RuleURL returns the absolute link to an alert rule's detail page.
func (r *BaseResolver) RuleURL(rule models.Rule, group models.Group, project models.Project) string {
	return r.Absolute(fmt.Sprintf("/organizations/%s/alerts/rules/%s/%d/",
		group.Organization.Slug, project.Slug, rule.ID))
}
