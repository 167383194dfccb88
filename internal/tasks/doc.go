// Package tasks runs multi-request jobs against the recommendation backend with progress reporting.
//
// # Operations
//
//  1. [Engine.ExportSimilar] : for each seed anime, fetch similar titles and write one export file
//     - A producer fetches under a rate limiter, a worker pool writes files
//     - Per-seed failures are recorded and do not stop the run
//     - An export_manifest.json summarizes the run
//
//  2. [Engine.Dump] : fetch every read endpoint and collect the raw payloads
//     - Signed-in endpoints are included only when requested
//     - Failed endpoints are listed in [DumpResult.Errors]
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends never block; when the
// channel is full the update is dropped.
package tasks
