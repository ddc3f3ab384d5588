// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package auth hashes passwords and issues, parses and revokes the bearer
// tokens that identify Sage users.
package auth
