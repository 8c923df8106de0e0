package index

import (
	"sort"
	"time"

	"github.com/trade-engine/market-archiver/pkg/schema"
)

// Partition identifies one published artifact with just the fields
// the catalog index needs.
type Partition struct {
	Asset     string
	Timeframe string
	Quarter   string
	StartDate int64 // Unix ms
	EndDate   int64 // Unix ms
}

// Entry is one quarter of one asset/timeframe in the index. Field
// names are a wire contract.
type Entry struct {
	Quarter   string `json:"quarter"`
	StartDate int64  `json:"startDate"`
	EndDate   int64  `json:"endDate"`
}

// CatalogIndex is the single top-level manifest enumerating every
// partition in remote storage. It is rebuilt wholesale on every run
// from the partitions that actually published; it never merges with
// a previous remote index, so a partial run shrinks the catalog to
// what that run uploaded.
type CatalogIndex struct {
	Version     string                        `json:"version"`
	GeneratedAt string                        `json:"generatedAt"` // RFC3339 UTC
	Assets      map[string]map[string][]Entry `json:"assets"`
	TotalAssets int                           `json:"totalAssets"`
	TotalFiles  int                           `json:"totalFiles"`
}

// Build aggregates published partitions into a catalog index. Pure
// function: same partitions and timestamp, same index. Entries within
// an asset/timeframe are ordered by quarter.
func Build(partitions []Partition, now time.Time) CatalogIndex {
	assets := make(map[string]map[string][]Entry)

	for _, p := range partitions {
		timeframes, ok := assets[p.Asset]
		if !ok {
			timeframes = make(map[string][]Entry)
			assets[p.Asset] = timeframes
		}
		timeframes[p.Timeframe] = append(timeframes[p.Timeframe], Entry{
			Quarter:   p.Quarter,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		})
	}

	for _, timeframes := range assets {
		for _, entries := range timeframes {
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].Quarter != entries[j].Quarter {
					return entries[i].Quarter < entries[j].Quarter
				}
				return entries[i].StartDate < entries[j].StartDate
			})
		}
	}

	return CatalogIndex{
		Version:     schema.SchemaVersion,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Assets:      assets,
		TotalAssets: len(assets),
		TotalFiles:  len(partitions),
	}
}
