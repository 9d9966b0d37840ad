/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StreamResult is one streamed item, or an error in place of one.
type StreamResult[T any] struct {
	Item  T
	Raw   map[string]types.AttributeValue
	Error error
	Meta  StreamMeta
}

// StreamMeta locates an item within its stream.
type StreamMeta struct {
	Index      int64 // 0-based
	PageNumber int   // 1-based
	Timestamp  time.Time
}

// StreamOptions configures streaming behavior
type StreamOptions struct {
	BufferSize      int           // result channel buffer (default 100)
	MaxRetries      int           // retries on throttling and server errors (default 3)
	RetryBackoff    time.Duration // linear backoff step (default 1s)
	PageSize        int32         // items per page (default 100)
	ProgressHandler func(StreamProgress)
	ErrorHandler    func(error) bool // return true to query a failed page again
}

// StreamProgress is reported after every page.
type StreamProgress struct {
	ItemsProcessed int64
	PagesProcessed int
	LastKey        map[string]types.AttributeValue
	Errors         []error
	StartTime      time.Time
	CurrentRate    float64 // items per second
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize:   100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		PageSize:     100,
	}
}

// NewStreamOptions applies opts over the defaults.
func NewStreamOptions(opts ...StreamOption) StreamOptions {
	options := DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

func WithMaxRetries(retries int) StreamOption {
	return func(opts *StreamOptions) {
		opts.MaxRetries = retries
	}
}

func WithRetryBackoff(backoff time.Duration) StreamOption {
	return func(opts *StreamOptions) {
		opts.RetryBackoff = backoff
	}
}

func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}

// WithProgressHandler sets a callback invoked after each page.
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// WithErrorHandler decides whether a failed page is queried again or
// ends the stream.
func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(opts *StreamOptions) {
		opts.ErrorHandler = handler
	}
}
