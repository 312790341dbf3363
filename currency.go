package rates

import (
	"context"
)

type FetchStatus int

const (
	FetchOK FetchStatus = iota
	FetchEmpty
	FetchFailed
)

type (
	FetchResult struct {
		Date    string
		Status  FetchStatus
		Payload *Payload
		Err     error
	}

	Fetcher interface {
		Fetch(ctx context.Context, date string) FetchResult
	}
)

func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchEmpty:
		return "empty"
	case FetchFailed:
		return "failed"
	}

	return "unknown"
}
