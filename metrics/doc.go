// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters for registrations, polls,
// votes, rejections by error code and HTTP traffic.
package metrics
