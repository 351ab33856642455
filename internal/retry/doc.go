// Package retry provides bounded retry and polling primitives for flaky
// operations against the catalog publisher.
//
// Design decision: Downloads from the publisher fail in ways that are
// invisible until a timeout (the endpoint silently drops requests under
// load), so every network-facing operation runs under an explicit Policy:
//  1. A fixed attempt bound chosen per run (5 permissive, 3 strict)
//  2. A randomized uniform delay after every failed attempt
//  3. Prompt cancellation via context, including mid-delay
//
// The Wait primitive covers the other half of the problem: a triggered
// download lands on disk some time later, so the reconciler polls the
// download directory on a fixed interval under a total budget instead of
// sleeping a worst-case duration.
package retry
