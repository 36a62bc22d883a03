// Package main prints a summary of the sniper's executed trades from the
// persisted record log.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"solsniper/internal/domain"
	"solsniper/internal/records"
	recjsonl "solsniper/internal/records/jsonl"
	recpg "solsniper/internal/records/postgres"
)

func main() {
	recordsFile := flag.String("records-file", "trades.jsonl", "JSONL trade record file")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides --records-file)")
	flag.Parse()

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, *postgresDSN, *recordsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening record store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	recs, err := store.ListAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading records: %v\n", err)
		os.Exit(1)
	}
	if len(recs) == 0 {
		fmt.Println("No trades recorded.")
		return
	}

	printSummary(recs)
}

func openStore(ctx context.Context, dsn, file string) (records.TradeRecordStore, func(), error) {
	if dsn != "" {
		pool, err := recpg.NewPool(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return recpg.NewTradeRecordStore(pool), pool.Close, nil
	}
	store, err := recjsonl.NewStore(file)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

// tokenSummary pairs the buy and sell legs recorded for one address.
type tokenSummary struct {
	address  string
	buyNet   float64
	sellNet  float64
	feeUsd   float64
	tipSol   float64
	buys     int
	sells    int
	lastSeen string
}

func printSummary(recs []*domain.TradeRecord) {
	perToken := make(map[string]*tokenSummary)
	var order []string

	var totalFees, totalTips float64
	daySet := make(map[string]struct{})

	for _, r := range recs {
		s, ok := perToken[r.Address]
		if !ok {
			s = &tokenSummary{address: r.Address}
			perToken[r.Address] = s
			order = append(order, r.Address)
		}
		switch r.Side {
		case domain.SideBuy:
			s.buys++
			s.buyNet += r.NetUsd
			s.tipSol += r.PriorityFeeSol
			totalTips += r.PriorityFeeSol
		case domain.SideSell:
			s.sells++
			s.sellNet += r.NetUsd
		}
		s.feeUsd += r.FeeUsd
		totalFees += r.FeeUsd
		s.lastSeen = r.TimestampUtc.Format("2006-01-02 15:04")
		daySet[r.TimestampUtc.Format("2006-01-02")] = struct{}{}
	}

	sort.Strings(order)

	fmt.Printf("%-45s %5s %5s %12s %12s %12s %10s  %s\n",
		"TOKEN", "BUYS", "SELLS", "INVESTED", "RETURNED", "PNL", "FEES", "LAST TRADE")
	var totalPnl float64
	var open, closed, wins int
	for _, addr := range order {
		s := perToken[addr]
		pnl := s.sellNet - s.buyNet
		status := ""
		if s.sells < s.buys {
			status = " (open)"
			open++
		} else {
			totalPnl += pnl
			closed++
			if pnl > 0 {
				wins++
			}
		}
		fmt.Printf("%-45s %5d %5d %12.2f %12.2f %+12.2f %10.2f  %s%s\n",
			s.address, s.buys, s.sells, s.buyNet, s.sellNet, pnl, s.feeUsd, s.lastSeen, status)
	}

	fmt.Println()
	fmt.Printf("Trades:        %d legs across %d tokens over %d day(s)\n",
		len(recs), len(perToken), len(daySet))
	fmt.Printf("Realized P&L:  %+.2f USD (%d position(s) still open)\n", totalPnl, open)
	if closed > 0 {
		fmt.Printf("Win rate:      %d/%d closed (%.1f%%)\n", wins, closed, 100*float64(wins)/float64(closed))
	}
	fmt.Printf("Fees paid:     %.2f USD platform, %.3f SOL priority tips\n", totalFees, totalTips)
}
