package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/crds"
	"github.com/ledgerwatch/crds/gossip/crds/crdsmetrics"
)

var (
	insertPubkeyHex string
	insertGossip    string
	insertShredVer  uint16
)

func init() {
	insertCmd.Flags().StringVar(&insertPubkeyHex, "pubkey", "", "64-char hex originator pubkey (required)")
	insertCmd.Flags().StringVar(&insertGossip, "gossip", "127.0.0.1:8001", "gossip socket address to announce")
	insertCmd.Flags().Uint16Var(&insertShredVer, "shred-version", 0, "shred version to announce")
	_ = insertCmd.MarkFlagRequired("pubkey")
}

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert a single LegacyContactInfo into a fresh table and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := hex.DecodeString(insertPubkeyHex)
		if err != nil {
			return fmt.Errorf("--pubkey: %w", err)
		}
		if len(raw) != common.PubkeyLength {
			return fmt.Errorf("--pubkey: want %d bytes, got %d", common.PubkeyLength, len(raw))
		}

		maxSize, err := parseMaxTableSize()
		if err != nil {
			return err
		}

		tbl := crds.NewTable(crds.Config{MaxTableSize: maxSize})
		metrics := crdsmetrics.NewSet(prometheus.NewRegistry(), "crdsctl")
		tbl.SetMetrics(metrics)
		now := uint64(time.Now().UnixMilli())
		value := crds.CrdsValue{Data: &crds.LegacyContactInfo{
			ID:           common.BytesToPubkey(raw),
			WallclockMs:  now,
			ShredVersion: insertShredVer,
			Gossip:       insertGossip,
		}}

		if err := tbl.Insert(value, now); err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		rec, _ := tbl.Get(value.Label())
		size, cursor, _ := metrics.Snapshot()
		fmt.Printf("inserted %s\n  hash=%s\n  cursor=%d\n  table_size=%d\n  metric crds_table_size=%.0f crds_table_cursor=%.0f\n",
			value.Label(), rec.ValueHash.Hex(), rec.CursorOnInsertion, tbl.Len(), size, cursor)
		return nil
	},
}
