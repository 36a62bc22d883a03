package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solsniper/internal/domain"
	"solsniper/internal/records"
)

// TradeRecordStore implements records.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ records.TradeRecordStore = (*TradeRecordStore)(nil)

const tradeRecordColumns = `
	address, side, price_usd, market_cap_usd,
	gross_usd, net_usd, fee_usd,
	priority_fee_sol, priority_fee_tier,
	tx_id, timestamp_utc
`

// Append adds a finalized record.
func (s *TradeRecordStore) Append(ctx context.Context, r *domain.TradeRecord) error {
	if r == nil || r.Address == "" {
		return records.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_records (` + tradeRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		r.Address, r.Side, r.PriceUsd, r.MarketCapUsd,
		r.GrossUsd, r.NetUsd, r.FeeUsd,
		r.PriorityFeeSol, r.PriorityFeeTier,
		r.TxID, r.TimestampUtc,
	)
	if err != nil {
		return fmt.Errorf("%w: insert trade record: %v", records.ErrPersistence, err)
	}
	return nil
}

// ListByAddress retrieves all records for a token address, oldest first.
func (s *TradeRecordStore) ListByAddress(ctx context.Context, address string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		WHERE address = $1
		ORDER BY timestamp_utc ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("%w: list trade records by address: %v", records.ErrPersistence, err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// ListAll retrieves every record, oldest first.
func (s *TradeRecordStore) ListAll(ctx context.Context) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		ORDER BY timestamp_utc ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list all trade records: %v", records.ErrPersistence, err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var out []*domain.TradeRecord

	for rows.Next() {
		var r domain.TradeRecord
		err := rows.Scan(
			&r.Address, &r.Side, &r.PriceUsd, &r.MarketCapUsd,
			&r.GrossUsd, &r.NetUsd, &r.FeeUsd,
			&r.PriorityFeeSol, &r.PriorityFeeTier,
			&r.TxID, &r.TimestampUtc,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade record row: %w", err)
		}
		r.TimestampUtc = r.TimestampUtc.UTC()
		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade record rows: %w", err)
	}

	return out, nil
}
