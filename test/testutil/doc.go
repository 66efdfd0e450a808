// Package testutil provides assertion helpers for integration tests.
//
// Note: For NATS server setup and fixtures, use the github.com/arloliu/rotacl/testing package.
// This package holds checks shared by the multi-controller scenarios under test/integration.
package testutil
