package ui

import "sync/atomic"

type Stats struct {
	ChaptersFetched atomic.Int64
	ChaptersSkipped atomic.Int64
	TotalBytes      atomic.Int64
}
