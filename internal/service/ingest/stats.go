package ingest

import (
	"fmt"
	"strings"
	"time"
)

type Mode string

const (
	Incremental Mode = "incremental"
	Full        Mode = "full"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Incremental:
		return Incremental, nil
	case Full:
		return Full, nil
	default:
		return "", fmt.Errorf("unknown sync mode %q", s)
	}
}

type Stats struct {
	RunId              string        `json:"run_id"`
	Mode               Mode          `json:"mode"`
	Fetched            int           `json:"fetched"`
	Inserted           int           `json:"inserted"`
	Updated            int           `json:"updated"`
	Rejected           int           `json:"rejected"`
	Embedded           int           `json:"embedded"`
	EmbedFailures      int           `json:"embed_failures"`
	UpsertFailures     int           `json:"upsert_failures"`
	FetchFailures      int           `json:"fetch_failures"`
	ReachedOffsetLimit bool          `json:"reached_offset_limit"`
	LastOffset         int           `json:"last_offset"`
	IndexLists         int           `json:"index_lists,omitempty"`
	Duration           time.Duration `json:"duration"`
}
