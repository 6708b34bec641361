// Package task runs background jobs on a bounded worker pool backed by
// durable task records.
//
// A submitted task is saved as a pending record and offered to an in-memory
// queue without blocking. Workers mark records processing, run the task and
// store the outcome. Records that did not fit in the queue, were interrupted
// by a restart, or sat in processing for too long are picked up again by the
// runner's sweeper and rebuilt through a registered Rehydrator.
package task
