// Package main is the entry point for the gpsmetrics CLI tool, which imports
// GPS tracking exports and computes team KPIs and player percentile profiles.
package main

import "github.com/pable/go-gps-metrics/cmd"

func main() {
	cmd.Execute()
}
