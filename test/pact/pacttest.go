//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "carrier-checkout-api"
	ConsumerName = "storefront-checkout"

	StateInstanceConfigured = "shipping instance 5 offers OCA and Andreani"
	StateOrderCommitted     = "order 1 committed Andreani for instance 5"
	StateNoOrders           = "no orders exist"
)

const (
	InstanceID      int64 = 5
	ExistingOrderID int64 = 1
	MissingOrderID  int64 = 999

	// SessionID and Token are fixed so the provider can accept the recorded save request.
	SessionID = "0f8c3a52-6a0d-4e7b-9a51-3f1f5f0f2c11"
	Token     = "pact-token"
	BadToken  = "stale-token"

	InstanceTitle = "Envío a domicilio"
	Carriers      = "OCA\nAndreani"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// SessionCookie is the Cookie header value the consumer replays.
func SessionCookie() string {
	return "checkout_session=" + SessionID
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
