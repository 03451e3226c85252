// Package metrics records battery readings, alerts, and command launches as
// Prometheus metrics and exports them through the node_exporter textfile
// collector. The daemon never listens on a socket, so there is no scrape
// endpoint.
package metrics
