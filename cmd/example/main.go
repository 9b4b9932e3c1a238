// Package main provides a basic example of using the courier HTTP/1.1 client.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peznauts/courier/pkg/courier"
)

func main() {
	var (
		host        = flag.String("host", "127.0.0.1", "target host")
		port        = flag.Int("port", 8080, "target port")
		path        = flag.String("path", "/", "request path")
		postBody    = flag.String("post", "", "POST the given body instead of a GET")
		metricsAddr = flag.String("metrics", "", "expose Prometheus metrics on this address (e.g. :9100)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "courier: ", log.LstdFlags)

	// Optionally expose client metrics the same way a server would.
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("metrics endpoint: %v", err)
			}
		}()
	}

	config := courier.DefaultConfig()
	config.Logger = logger

	dialer, err := courier.NewDialer(config)
	if err != nil {
		logger.Fatalf("dialer: %v", err)
	}
	defer dialer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := dialer.Connect(ctx, *host, *port)
	if err != nil {
		logger.Fatalf("connect: %v", err)
	}
	defer client.Close()

	var req *courier.Request
	if *postBody != "" {
		req = courier.NewRequest("POST", *path, []byte(*postBody))
		req.AddHeader("content-type", "text/plain")
	} else {
		req = courier.NewRequest("GET", *path, nil)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		logger.Fatalf("exchange: %v", err)
	}

	log.Printf("%s %d", resp.Proto(), resp.Status())
	for _, h := range resp.Head.Headers.All() {
		log.Printf("  %s: %s", h[0], h[1])
	}
	if body, err := resp.DecodedBody(); err == nil && len(body) > 0 {
		log.Printf("body (%d bytes):\n%s", len(body), body)
	}
}
