// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package config loads and validates application configuration via Koanf v2
// with layered sources (defaults, YAML file, environment variables).
package config
