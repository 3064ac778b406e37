// Command smoke probes the health endpoints of every running service and
// exits non-zero when a critical one is down. Intended for deploy
// pipelines and local sanity checks.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type probe struct {
	Name     string
	Base     string
	Path     string
	Critical bool
}

type result struct {
	Probe    probe
	Status   int
	Healthy  bool
	Duration time.Duration
	Error    error
}

func main() {
	var (
		gatewayBase  string
		identityBase string
		listingBase  string
		userBase     string
		timeout      time.Duration
	)

	flag.StringVar(&gatewayBase, "gateway", "http://localhost:8080", "API gateway base URL")
	flag.StringVar(&identityBase, "identity", "http://localhost:8081", "Identity service base URL")
	flag.StringVar(&listingBase, "listing", "http://localhost:8082", "Listing service base URL")
	flag.StringVar(&userBase, "user", "http://localhost:8083", "User service base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes := []probe{
		{Name: "api-gateway", Base: gatewayBase, Path: "/health", Critical: true},
		{Name: "identity-service", Base: identityBase, Path: "/health", Critical: true},
		{Name: "listing-service", Base: listingBase, Path: "/health", Critical: true},
		{Name: "user-service", Base: userBase, Path: "/health", Critical: true},
		{Name: "gateway-metrics", Base: gatewayBase, Path: "/metrics", Critical: false},
	}

	client := &http.Client{Timeout: timeout}
	var down int

	var results []result
	for _, p := range probes {
		res := check(client, p)
		if !res.Healthy && p.Critical {
			down++
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Critical services down: %d\n", down)
	if down > 0 {
		os.Exit(1)
	}
}

func check(client *http.Client, p probe) result {
	res := result{Probe: p}

	url := strings.TrimRight(p.Base, "/") + p.Path
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		res.Error = err
		return res
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.Status = resp.StatusCode
	res.Healthy = resp.StatusCode == http.StatusOK
	return res
}

func printReport(results []result) {
	fmt.Println("Service Smoke Report")
	fmt.Println("====================")
	for _, res := range results {
		status := "UP"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.Healthy {
			status = "DOWN"
		}
		fmt.Printf("[%s] %s %s%s\n", status, res.Probe.Name, res.Probe.Base, res.Probe.Path)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status: %d (%s) | Critical: %t\n", res.Status, res.Duration, res.Probe.Critical)
	}
}
