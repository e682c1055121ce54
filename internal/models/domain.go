// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package models

import "fmt"

// Organization is the tenant that owns projects, alert rules and feature
// flags. Slug is the URL-safe identifier used in API paths and links.
type Organization struct {
	ID   int64  `json:"id,string"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Project is an event-producing unit inside an organization. Events queries
// are always scoped to one or more projects the actor can access.
type Project struct {
	ID   int64  `json:"id,string"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Group is an aggregation of similar events (an issue). Notification emails
// deep-link into its detail page.
type Group struct {
	ID           int64        `json:"id,string"`
	Organization Organization `json:"-"`
	Project      Project      `json:"-"`
}

// PermalinkPath returns the relative path to the group's detail page.
func (g Group) PermalinkPath() string {
	return fmt.Sprintf("/organizations/%s/issues/%d/", g.Organization.Slug, g.ID)
}

// Rule is an issue alert rule. Its ID is carried in email links for
// attribution and edit shortcuts.
type Rule struct {
	ID    int64  `json:"id,string"`
	Label string `json:"label"`
}

// NotificationRuleDetails is the subset of an alert rule that notification
// composition needs when building links.
type NotificationRuleDetails struct {
	ID    int64
	Label string
}
