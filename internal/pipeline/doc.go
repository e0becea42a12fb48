// Package pipeline drives a full run: normalize every raw record, drop
// shows that already happened, split the pool by calendar day, then
// detect and merge duplicates one day at a time on a bounded worker pool.
//
// Days are independent, so each is handed to its own errgroup goroutine.
// Output is concatenated in day order and is byte-for-byte reproducible
// for the same input.
package pipeline
