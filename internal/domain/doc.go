package domain

// Package domain contains the core concepts for the target generator:
// request parameters, grid geometry, and the error kinds the service
// distinguishes. Keep this package free of transport (HTTP) and drawing
// (PDF) concerns.
