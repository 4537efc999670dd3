// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging configures the default slog logger from LOG_LEVEL and
// LOG_FORMAT. Everything else logs through the package-level slog functions.
package logging
