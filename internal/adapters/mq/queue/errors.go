package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrQueueFull   = errors.New("retrain queue full")
	ErrQueueClosed = errors.New("retrain queue closed")
)
