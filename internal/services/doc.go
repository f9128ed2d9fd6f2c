// Package services contains the business logic layer between the HTTP
// transport and the delivery analysis engine. Services validate request
// parameters, drive the parsing and analysis pipelines, and record
// structured logs and Prometheus metrics for every run.
package services
