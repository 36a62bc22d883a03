package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solsniper/internal/domain"
	"solsniper/internal/records"
)

func TestStore_AppendWritesOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, &domain.TradeRecord{
		Address:      "MintA",
		Side:         domain.SideBuy,
		GrossUsd:     15,
		NetUsd:       14.85,
		FeeUsd:       0.15,
		TxID:         "sig1",
		TimestampUtc: now,
	}))
	require.NoError(t, store.Append(ctx, &domain.TradeRecord{
		Address:      "MintA",
		Side:         domain.SideSell,
		GrossUsd:     30,
		TxID:         "sig2",
		TimestampUtc: now.Add(time.Minute),
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.NoError(t, sc.Err())

	require.Len(t, lines, 2)
	require.Equal(t, "BUY", lines[0]["side"])
	require.Equal(t, "sig1", lines[0]["txId"])
	require.Equal(t, "SELL", lines[1]["side"])
}

func TestStore_ListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, &domain.TradeRecord{Address: "MintB", Side: domain.SideBuy, TimestampUtc: now.Add(time.Hour)}))
	require.NoError(t, store.Append(ctx, &domain.TradeRecord{Address: "MintA", Side: domain.SideBuy, TimestampUtc: now}))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "MintA", all[0].Address, "records ordered by timestamp, not write order")

	byAddr, err := store.ListByAddress(ctx, "MintB")
	require.NoError(t, err)
	require.Len(t, byAddr, 1)
	require.Equal(t, "MintB", byAddr[0].Address)
}

func TestStore_ListSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, &domain.TradeRecord{Address: "MintA", Side: domain.SideBuy, TimestampUtc: time.Now().UTC()}))

	// Simulate a truncated write from a crash.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"address":"Mint`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestStore_ListAllMissingFile(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "never-written.jsonl"))
	require.NoError(t, err)

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	require.True(t, errors.Is(err, records.ErrInvalidInput))
}
