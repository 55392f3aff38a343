// Package resilience holds the fault tolerance building blocks used
// around external calls: circuit breakers for the render API and the
// library sites, and retry with exponential backoff and jitter for
// transient fetch failures.
package resilience
