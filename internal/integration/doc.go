// Package integration provides integration tests for txmonkey.
//
// These tests run the scenarios against a real development node. They are
// skipped when no node is reachable, making them safe to include in CI.
//
// # Running Integration Tests
//
// Connection tests only need a node:
//
//	RPC_URL=http://localhost:8545 go test ./internal/integration/...
//
// Scenario tests need a funded account:
//
//	RPC_URL=http://localhost:8545 \
//	PRIVATE_KEY=0x... \
//	go test ./internal/integration/...
//
// Skip integration tests in CI:
//
//	go test -short ./...
//
// # Environment Variables
//
//   - RPC_URL: RPC endpoint URL (default: http://localhost:8545)
//   - PRIVATE_KEY: Private key with funds for testing (hex, with or without 0x prefix)
//   - GAS_PRICE: gas price in wei, hex or decimal (default: 2 gwei, enough for anvil's base fee)
//
// # Local Development
//
//	anvil
//
//	RPC_URL=http://localhost:8545 \
//	PRIVATE_KEY=0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80 \
//	go test ./internal/integration/...
package integration
