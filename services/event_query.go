// services/event_query.go
package services

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"checkpoint-rewards/models"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/pkg/logger"
	"checkpoint-rewards/utils"
)

const (
	DefaultEventPageLimit = 100
	timestampFanOut       = 8
)

// BlockTimer resolves block timestamps; *blockchain.Client satisfies it.
type BlockTimer interface {
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// ObjectUploader stores an object and returns its public URL; *utils.R2Uploader satisfies it.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// EventQuery is a parsed /api/checkin-events request.
type EventQuery struct {
	Limit        int
	Offset       int
	User         *common.Address
	Checkpoint   *big.Int
	FromBlock    *big.Int
	ToBlock      *big.Int
	ForceRefresh bool
}

// EventView is a CheckIn event with big integers rendered as decimal strings.
type EventView struct {
	User            string  `json:"user"`
	CheckpointID    string  `json:"checkpointId"`
	Points          string  `json:"points"`
	BlockNumber     string  `json:"blockNumber"`
	TransactionHash string  `json:"transactionHash"`
	Timestamp       *uint64 `json:"timestamp,omitempty"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type CacheInfo struct {
	WasCached   bool       `json:"wasCached"`
	Refreshed   bool       `json:"refreshed"`
	LastUpdated *time.Time `json:"lastUpdated"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

type EventPage struct {
	Events     []EventView `json:"events"`
	Pagination Pagination  `json:"pagination"`
	Cache      CacheInfo   `json:"cache"`
}

var eventCSVHeader = []string{"user", "checkpointId", "points", "blockNumber", "transactionHash", "timestamp"}

// EventQueryService pages through cached CheckIn events and exports them.
type EventQueryService struct {
	cache    *EventCache
	blocks   BlockTimer
	uploader ObjectUploader
	clock    clockwork.Clock
}

// NewEventQueryService wires the cache. blocks and uploader may be nil: events
// then carry no timestamps and archiving reports a configuration error.
func NewEventQueryService(cache *EventCache, blocks BlockTimer, uploader ObjectUploader, clock clockwork.Clock) *EventQueryService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EventQueryService{cache: cache, blocks: blocks, uploader: uploader, clock: clock}
}

// List returns one page of events, newest block first.
func (s *EventQueryService) List(ctx context.Context, q EventQuery) (*EventPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultEventPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	before := s.cache.Status()
	all, err := s.cache.Fetch(ctx, EventFetchOptions{
		ForceRefresh: q.ForceRefresh,
		FromBlock:    q.FromBlock,
		ToBlock:      q.ToBlock,
		User:         q.User,
	})
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			err = apperrors.New(apperrors.CodeRPC, "Failed to fetch CheckIn events", err)
		}
		return nil, err
	}
	after := s.cache.Status()

	// The cached slice is shared, so filter into a fresh one before sorting.
	filtered := make([]models.CheckInEvent, 0, len(all))
	for _, ev := range all {
		if q.Checkpoint != nil && (ev.CheckpointID == nil || ev.CheckpointID.Cmp(q.Checkpoint) != 0) {
			continue
		}
		filtered = append(filtered, ev)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].BlockNumber > filtered[j].BlockNumber
	})

	total := len(filtered)
	start := min(q.Offset, total)
	end := min(start+q.Limit, total)
	page := filtered[start:end]

	return &EventPage{
		Events: s.withTimestamps(ctx, page),
		Pagination: Pagination{
			Total:   total,
			Limit:   q.Limit,
			Offset:  q.Offset,
			HasMore: q.Offset+q.Limit < total,
		},
		Cache: CacheInfo{
			WasCached:   before.IsCached && !q.ForceRefresh,
			Refreshed:   !before.IsCached || q.ForceRefresh,
			LastUpdated: after.LastUpdated,
			ExpiresAt:   after.ExpiresAt,
		},
	}, nil
}

// withTimestamps looks up block times concurrently. A failed lookup leaves the
// event without a timestamp.
func (s *EventQueryService) withTimestamps(ctx context.Context, events []models.CheckInEvent) []EventView {
	views := make([]EventView, len(events))
	for i, ev := range events {
		views[i] = toView(ev)
	}
	if s.blocks == nil || len(events) == 0 {
		return views
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(timestampFanOut)
	for i := range events {
		g.Go(func() error {
			ts, err := s.blocks.BlockTimestamp(gctx, events[i].BlockNumber)
			if err != nil {
				logger.WithFields(logrus.Fields{"block": events[i].BlockNumber}).
					WithError(err).Debug("block timestamp unavailable")
				return nil
			}
			views[i].Timestamp = &ts
			return nil
		})
	}
	_ = g.Wait()
	return views
}

func toView(ev models.CheckInEvent) EventView {
	return EventView{
		User:            ev.User,
		CheckpointID:    bigString(ev.CheckpointID),
		Points:          bigString(ev.Points),
		BlockNumber:     strconv.FormatUint(ev.BlockNumber, 10),
		TransactionHash: ev.TransactionHash,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// CSV renders events with the export header row.
func (s *EventQueryService) CSV(events []EventView) ([]byte, error) {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		ts := ""
		if ev.Timestamp != nil {
			ts = strconv.FormatUint(*ev.Timestamp, 10)
		}
		rows = append(rows, []string{ev.User, ev.CheckpointID, ev.Points, ev.BlockNumber, ev.TransactionHash, ts})
	}
	return utils.BuildCSV(eventCSVHeader, rows)
}

// ExportFilename is the download name for a CSV export made today.
func (s *EventQueryService) ExportFilename() string {
	return fmt.Sprintf("checkin-events-%s.csv", s.clock.Now().UTC().Format(time.DateOnly))
}

type ArchiveResult struct {
	Key        string `json:"key"`
	URL        string `json:"url"`
	EventCount int    `json:"eventCount"`
}

// Archive builds the CSV for q and uploads it to object storage.
func (s *EventQueryService) Archive(ctx context.Context, q EventQuery) (*ArchiveResult, error) {
	if s.uploader == nil {
		return nil, apperrors.New(apperrors.CodeConfig, "Object storage is not configured", nil)
	}
	page, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}
	body, err := s.CSV(page.Events)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeStore, "Failed to build CSV", err)
	}

	key := fmt.Sprintf("exports/checkin-events-%s-%s.csv", s.clock.Now().UTC().Format(time.DateOnly), uuid.NewString())
	url, err := s.uploader.Upload(ctx, key, body, "text/csv; charset=utf-8")
	if err != nil {
		logger.WithFields(logrus.Fields{"key": key}).WithError(err).Error("CSV export upload failed")
		return nil, apperrors.New(apperrors.CodeStore, "Failed to upload export", err)
	}
	logger.WithFields(logrus.Fields{"key": key, "events": len(page.Events)}).Info("CSV export archived")
	return &ArchiveResult{Key: key, URL: url, EventCount: len(page.Events)}, nil
}

// InvalidateCache clears the event cache and reports its status around the call.
func (s *EventQueryService) InvalidateCache() (before, after CacheStatus) {
	before = s.cache.Status()
	s.cache.Invalidate()
	return before, s.cache.Status()
}

// Warm force-refreshes the full event scan.
func (s *EventQueryService) Warm(ctx context.Context) (int, error) {
	events, err := s.cache.Fetch(ctx, EventFetchOptions{ForceRefresh: true})
	if err != nil {
		return 0, err
	}
	return len(events), nil
}
