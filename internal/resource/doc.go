// Package resource bounds the work a package build or publish may do at once.
//
// A Controller hands out worker slots (golang.org/x/sync/semaphore), meters
// IO throughput (golang.org/x/time/rate) and tracks memory held by caches.
// A nil *Controller is valid and imposes no limits.
package resource
