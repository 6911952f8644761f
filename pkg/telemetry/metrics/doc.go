// Package metrics provides Prometheus metrics for the dev proxy.
//
// A single Collector owns every metric: request counts and latencies by
// resolution source (local, proxy, miss), upstream failure counts, file
// watcher activity, and connected live reload clients. The collector is
// nil-safe and a no-op when metrics are disabled, so call sites never need
// to guard their recording calls.
package metrics
