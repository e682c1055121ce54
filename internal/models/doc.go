// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package models defines the shared domain objects (organizations, projects,
// groups, alert rules) and the API response envelopes used across the HTTP
// layer and the notification link builders.
package models
