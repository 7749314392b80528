// fakeplatform serves a single fake MSP platform instance for local mspadm
// runs. It implements the five admin endpoints with canned data and logs
// every request to stderr.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/msplatform/mspadm/internal/platformtest"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8787", "listen address")
	apiKey := flag.String("api-key", "", "require this admin API key (empty accepts any)")
	status := flag.String("status", "healthy", "reported system status")
	clients := flag.Int("clients", 3, "reported total clients")
	flag.Parse()

	opts := []platformtest.Option{
		platformtest.WithHealthSummary(*status, *clients),
	}
	if *apiKey != "" {
		opts = append(opts, platformtest.WithAPIKey(*apiKey))
	}
	instance := platformtest.New(opts...)

	_, _ = fmt.Fprintf(os.Stderr, "fake platform instance listening on http://%s\n", *addr)
	log.Fatal(http.ListenAndServe(*addr, logRequests(instance.Handler())))
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
