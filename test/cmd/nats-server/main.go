// Package main runs a standalone JetStream-enabled NATS server for the examples
// and for manual multi-process lock testing.
//
// Start one server, then point several example processes at the printed URL:
//
//	go run ./test/cmd/nats-server -port 4222
//	NATS_URL=nats://127.0.0.1:4222 go run ./examples/basic
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

func main() {
	host := flag.String("host", "127.0.0.1", "listen address")
	port := flag.Int("port", -1, "listen port (-1 picks a free port)")
	storeDir := flag.String("store", "", "JetStream storage directory (temporary if empty)")
	debug := flag.Bool("debug", false, "enable server logging")
	flag.Parse()

	dir := *storeDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "rotacl-nats-")
		if err != nil {
			log.Fatal("Failed to create temp directory:", err)
		}
		defer func() {
			_ = os.RemoveAll(tmp) // Best effort cleanup
		}()
		dir = tmp
	}

	opts := &server.Options{
		Host:      *host,
		Port:      *port,
		JetStream: true,
		StoreDir:  dir,
		NoLog:     !*debug,
		NoSigs:    true, // We handle signals ourselves
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to create NATS server: %v\n", err)
		os.Exit(1) //nolint:gocritic // OS will clean up temp directory on process exit
	}
	if *debug {
		srv.ConfigureLogger()
	}

	go srv.Start()
	if !srv.ReadyForConnections(10 * time.Second) {
		_, _ = fmt.Fprintln(os.Stderr, "NATS server not ready within timeout")
		os.Exit(1)
	}

	fmt.Printf("NATS_URL=%s\n", srv.ClientURL())
	_, _ = fmt.Fprintf(os.Stderr, "NATS server started (store %s, PID %d)\n", dir, os.Getpid())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	_, _ = fmt.Fprintln(os.Stderr, "Shutting down NATS server...")
	srv.Shutdown()
	srv.WaitForShutdown()
}
