package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rickgao/steamlytics/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentQuery struct {
	sql  string
	args []any
}

// fakeDB records batches and treats a repeated conflict key as a conflict.
type fakeDB struct {
	mu      sync.Mutex
	sent    []sentQuery
	batches int
	seen    map[string]bool
	err     error
}

func newFakeDB() *fakeDB {
	return &fakeDB{seen: make(map[string]bool)}
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++

	res := &fakeResults{err: f.err}
	for _, q := range b.QueuedQueries {
		f.sent = append(f.sent, sentQuery{sql: q.SQL, args: q.Arguments})
		// run_id plus the natural key column.
		key := fmt.Sprint(q.Arguments[0], q.Arguments[2], q.Arguments[3])
		if f.seen[key] {
			res.affected = append(res.affected, 0)
		} else {
			f.seen[key] = true
			res.affected = append(res.affected, 1)
		}
	}
	return res
}

func (f *fakeDB) queries() []sentQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentQuery(nil), f.sent...)
}

type fakeResults struct {
	affected []int64
	next     int
	err      error
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	if r.next >= len(r.affected) {
		return pgconn.CommandTag{}, errors.New("no more results")
	}
	n := r.affected[r.next]
	r.next++
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", n)), nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }
func (r *fakeResults) Close() error             { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func rankRows(runID uuid.UUID, names ...string) []model.PopularRank {
	rows := make([]model.PopularRank, len(names))
	for i, n := range names {
		rows[i] = model.PopularRank{RunID: runID, CapturedAt: 1705321845000000, Rank: i + 1, MarketHashName: n, Volume: int64(100 * (i + 1))}
	}
	return rows
}

func TestTableWriter_FlushOnBatchSize(t *testing.T) {
	db := newFakeDB()
	w := newTableWriter("popular_ranks", insertPopularRank, popularRankArgs,
		WriterConfig{BatchSize: 3, FlushInterval: time.Hour}, db, quietLogger())

	runID := uuid.New()
	w.Add(context.Background(), rankRows(runID, "a", "b")...)
	assert.Empty(t, db.queries(), "below batch size nothing is sent")
	assert.Equal(t, int64(2), w.Stats().Pending)

	w.Add(context.Background(), rankRows(runID, "c")...)
	require.Len(t, db.queries(), 3)

	stats := w.Stats()
	assert.Equal(t, int64(3), stats.Inserts)
	assert.Equal(t, int64(1), stats.Flushes)
	assert.Zero(t, stats.Pending)
}

func TestTableWriter_Conflicts(t *testing.T) {
	db := newFakeDB()
	w := newTableWriter("popular_ranks", insertPopularRank, popularRankArgs,
		WriterConfig{BatchSize: 2, FlushInterval: time.Hour}, db, quietLogger())

	runID := uuid.New()
	w.Add(context.Background(), rankRows(runID, "a", "b")...)
	w.Add(context.Background(), rankRows(runID, "a", "b")...)

	stats := w.Stats()
	assert.Equal(t, int64(2), stats.Inserts)
	assert.Equal(t, int64(2), stats.Conflicts)
	assert.Equal(t, int64(2), stats.Flushes)
}

func TestTableWriter_InsertError(t *testing.T) {
	db := newFakeDB()
	db.err = errors.New("connection reset")
	w := newTableWriter("popular_ranks", insertPopularRank, popularRankArgs,
		WriterConfig{BatchSize: 1, FlushInterval: time.Hour}, db, quietLogger())

	w.Add(context.Background(), rankRows(uuid.New(), "a")...)

	stats := w.Stats()
	assert.Equal(t, int64(1), stats.Errors)
	assert.Zero(t, stats.Inserts)
	assert.Zero(t, stats.Pending, "failed batches are dropped")
}

func TestTableWriter_Lifecycle(t *testing.T) {
	db := newFakeDB()
	w := newTableWriter("popular_ranks", insertPopularRank, popularRankArgs,
		WriterConfig{BatchSize: 100, FlushInterval: 20 * time.Millisecond}, db, quietLogger())

	require.NoError(t, w.Start(context.Background()))
	w.Add(context.Background(), rankRows(uuid.New(), "a", "b")...)

	assert.Eventually(t, func() bool { return len(db.queries()) == 2 }, 2*time.Second, 10*time.Millisecond)

	w.Add(context.Background(), rankRows(uuid.New(), "c")...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.Len(t, db.queries(), 3, "stop flushes pending rows")
	assert.Equal(t, int64(3), w.Stats().Inserts)
}

func TestTableWriter_StopWithoutStart(t *testing.T) {
	db := newFakeDB()
	w := newTableWriter("popular_ranks", insertPopularRank, popularRankArgs, DefaultWriterConfig(), db, nil)
	w.Add(context.Background(), rankRows(uuid.New(), "a")...)

	require.NoError(t, w.Stop(context.Background()))
	assert.Len(t, db.queries(), 1)
}

func TestSnapshotWriter_Write(t *testing.T) {
	db := newFakeDB()
	w := NewSnapshotWriter(WriterConfig{BatchSize: 1000, FlushInterval: time.Hour}, db, quietLogger())

	runID := uuid.New()
	snap := &model.Snapshot{
		RunID:      runID,
		CapturedAt: 1705321845000000,
		Popular:    rankRows(runID, "Operation Breakout Weapon Case"),
		Rates: []model.ExchangeRate{
			{RunID: runID, CapturedAt: 1705321845000000, Base: "USD", Currency: "EUR", Rate: decimal.RequireFromString("0.9234567891")},
		},
		Prices: []model.ItemPrice{
			{
				RunID:          runID,
				CapturedAt:     1705321845000000,
				MarketHashName: "AK-47 | Redline (Field-Tested)",
				Currency:       "2001",
				MedianPrice:    decimal.RequireFromString("7.12"),
				AveragePrice:   decimal.RequireFromString("7.3"),
				LowestPrice:    decimal.RequireFromString("6.5"),
				HighestPrice:   decimal.RequireFromString("8.99"),
				Volume:         321,
				FirstSeen:      1386460800,
			},
		},
	}

	require.NoError(t, w.Write(context.Background(), snap))
	assert.Equal(t, int64(3), w.Stats().Total().Pending)

	require.NoError(t, w.Stop(context.Background()))

	queries := db.queries()
	require.Len(t, queries, 3)

	byTable := map[string]sentQuery{}
	for _, q := range queries {
		for _, table := range []string{"popular_ranks", "exchange_rates", "item_prices"} {
			if strings.Contains(q.sql, "INSERT INTO "+table) {
				byTable[table] = q
			}
		}
	}
	require.Len(t, byTable, 3)

	assert.Equal(t, "0.9234567891", byTable["exchange_rates"].args[4], "rates keep full precision")
	assert.Equal(t, "7.12", byTable["item_prices"].args[4])
	assert.Equal(t, int64(1386460800), byTable["item_prices"].args[9])
	assert.Equal(t, runID, byTable["popular_ranks"].args[0])

	stats := w.Stats()
	assert.Equal(t, int64(1), stats.Popular.Inserts)
	assert.Equal(t, int64(1), stats.Rates.Inserts)
	assert.Equal(t, int64(1), stats.Prices.Inserts)
	assert.Equal(t, int64(3), stats.Total().Inserts)
}

func TestSnapshotWriter_EmptySnapshot(t *testing.T) {
	db := newFakeDB()
	w := NewSnapshotWriter(DefaultWriterConfig(), db, quietLogger())

	require.NoError(t, w.Write(context.Background(), &model.Snapshot{}))
	require.NoError(t, w.Stop(context.Background()))

	assert.Zero(t, db.batches)
}

func TestSnapshotWriter_ZeroConfigTakesDefaults(t *testing.T) {
	w := NewSnapshotWriter(WriterConfig{}, newFakeDB(), quietLogger())

	def := DefaultWriterConfig()
	for _, cfg := range []WriterConfig{w.popular.cfg, w.rates.cfg, w.prices.cfg} {
		assert.Equal(t, def, cfg)
	}

	// A zero flush interval would panic the ticker.
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
}

func TestWriterConfig_KeepsSetFields(t *testing.T) {
	cfg := WriterConfig{BatchSize: 10}.withDefaults()
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, DefaultWriterConfig().FlushInterval, cfg.FlushInterval)
}
