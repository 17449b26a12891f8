package services

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-rewards/pkg/apperrors"
)

type fakeBlocks struct {
	times map[uint64]uint64
}

func (f *fakeBlocks) BlockTimestamp(_ context.Context, n uint64) (uint64, error) {
	ts, ok := f.times[n]
	if !ok {
		return 0, errors.New("unknown block")
	}
	return ts, nil
}

type fakeUploader struct {
	mu          sync.Mutex
	key         string
	body        []byte
	contentType string
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key string, body []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.key, f.body, f.contentType = key, body, contentType
	return "https://cdn.example.com/" + key, nil
}

var queryClockStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newQueryService(t *testing.T, uploader ObjectUploader) (*EventQueryService, *fakeCheckInSource) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(queryClockStart)
	src := &fakeCheckInSource{events: sampleEvents()}
	cache := NewEventCache(src, testContract, WithEventCacheClock(clock))
	blocks := &fakeBlocks{times: map[uint64]uint64{30: 1700000030, 20: 1700000020}}
	return NewEventQueryService(cache, blocks, uploader, clock), src
}

func TestEventQuery_ListSortsAndPaginates(t *testing.T) {
	svc, _ := newQueryService(t, nil)
	ctx := context.Background()

	page, err := svc.List(ctx, EventQuery{Limit: 2})
	require.NoError(t, err)

	require.Len(t, page.Events, 2)
	assert.Equal(t, "30", page.Events[0].BlockNumber)
	assert.Equal(t, "20", page.Events[1].BlockNumber)
	require.NotNil(t, page.Events[0].Timestamp)
	assert.Equal(t, uint64(1700000030), *page.Events[0].Timestamp)
	assert.Equal(t, Pagination{Total: 3, Limit: 2, Offset: 0, HasMore: true}, page.Pagination)
	assert.False(t, page.Cache.WasCached)
	assert.True(t, page.Cache.Refreshed)
	require.NotNil(t, page.Cache.ExpiresAt)

	page, err = svc.List(ctx, EventQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "10", page.Events[0].BlockNumber)
	assert.Nil(t, page.Events[0].Timestamp, "missing block time is skipped")
	assert.False(t, page.Pagination.HasMore)
	assert.True(t, page.Cache.WasCached)
	assert.False(t, page.Cache.Refreshed)

	page, err = svc.List(ctx, EventQuery{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Events)
	assert.Equal(t, DefaultEventPageLimit, page.Pagination.Limit)
}

func TestEventQuery_CheckpointFilterLeavesCacheIntact(t *testing.T) {
	svc, _ := newQueryService(t, nil)
	ctx := context.Background()

	page, err := svc.List(ctx, EventQuery{Checkpoint: big.NewInt(2)})
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	for _, ev := range page.Events {
		assert.Equal(t, "2", ev.CheckpointID)
	}

	cached, err := svc.cache.Fetch(ctx, EventFetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cached[0].BlockNumber, "cached order is untouched")
}

func TestEventQuery_SourceErrorIsRPCError(t *testing.T) {
	svc, src := newQueryService(t, nil)
	src.err = errors.New("dial tcp: refused")

	_, err := svc.List(context.Background(), EventQuery{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRPC, apperrors.CodeOf(err))
}

func TestEventQuery_CSV(t *testing.T) {
	svc, _ := newQueryService(t, nil)
	ts := uint64(1700000000)

	body, err := svc.CSV([]EventView{
		{User: "0xa", CheckpointID: "1", Points: "100", BlockNumber: "5", TransactionHash: "0xt", Timestamp: &ts},
		{User: "0xb", CheckpointID: "2", Points: "50", BlockNumber: "6", TransactionHash: "0xu"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "user,checkpointId,points,blockNumber,transactionHash,timestamp", lines[0])
	assert.Equal(t, "0xa,1,100,5,0xt,1700000000", lines[1])
	assert.Equal(t, "0xb,2,50,6,0xu,", lines[2])

	assert.Equal(t, "checkin-events-2025-06-01.csv", svc.ExportFilename())
}

func TestEventQuery_Archive(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := newQueryService(t, up)

	res, err := svc.Archive(context.Background(), EventQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 3, res.EventCount)
	assert.True(t, strings.HasPrefix(res.Key, "exports/checkin-events-2025-06-01-"))
	assert.True(t, strings.HasSuffix(res.Key, ".csv"))
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
	assert.Equal(t, "text/csv; charset=utf-8", up.contentType)
	assert.Contains(t, string(up.body), "transactionHash")

	up.err = errors.New("access denied")
	_, err = svc.Archive(context.Background(), EventQuery{})
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

func TestEventQuery_ArchiveWithoutStorage(t *testing.T) {
	svc, _ := newQueryService(t, nil)
	_, err := svc.Archive(context.Background(), EventQuery{})
	assert.Equal(t, apperrors.CodeConfig, apperrors.CodeOf(err))
}

func TestEventQuery_InvalidateAndWarm(t *testing.T) {
	svc, src := newQueryService(t, nil)
	ctx := context.Background()

	n, err := svc.Warm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	before, after := svc.InvalidateCache()
	assert.True(t, before.IsCached)
	assert.Equal(t, 3, before.EventCount)
	assert.False(t, after.IsCached)

	_, err = svc.Warm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount())
}
