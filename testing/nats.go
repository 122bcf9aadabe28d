package testing

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// StartEmbeddedNATS starts an embedded NATS server with JetStream enabled for
// testing and returns a connected client.
//
// The server runs in-process and stores data in a temporary directory cleaned
// up when the test completes. It uses a random available port, so parallel
// tests don't conflict, and requires no Docker or external processes.
//
// Parameters:
//   - t: Testing context for logging and cleanup
//
// Returns:
//   - *server.Server: The embedded NATS server instance
//   - *nats.Conn: Connected NATS client (closed automatically on test completion)
//
// Example:
//
//	func TestCoordinator(t *testing.T) {
//	    ns, _ := tabtest.StartEmbeddedNATS(t)
//	    nc := tabtest.ConnectNATS(t, ns)
//	    // ...
//	}
func StartEmbeddedNATS(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,          // Use random available port
		JetStream: true,        // Enable JetStream for KV stores
		StoreDir:  t.TempDir(), // Auto-cleanup
		NoLog:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("Embedded NATS server not ready within timeout")
	}

	nc := ConnectNATS(t, ns)

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, nc
}

// ConnectNATS opens an additional client connection to an embedded server.
//
// Each simulated instance ("tab") should get its own connection so that
// closing one connection silences exactly that instance, the way a closing
// tab goes silent.
//
// Parameters:
//   - t: Testing context for cleanup
//   - ns: Embedded server from StartEmbeddedNATS
//
// Returns:
//   - *nats.Conn: Connected client (closed automatically on test completion)
func ConnectNATS(t *testing.T, ns *server.Server) *nats.Conn {
	t.Helper()

	nc, err := nats.Connect(ns.ClientURL(),
		nats.Timeout(2*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(3),
	)
	if err != nil {
		t.Fatalf("Failed to connect to embedded NATS server: %v", err)
	}

	t.Cleanup(nc.Close)

	return nc
}
