package main

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/crds"
	"github.com/ledgerwatch/crds/gossip/crds/crdsmetrics"
)

var seedCount int

func init() {
	seedStatsCmd.Flags().IntVar(&seedCount, "count", 1000, "number of synthetic contact infos to insert")
}

var seedStatsCmd = &cobra.Command{
	Use:   "seed-stats",
	Short: "Insert synthetic contact infos and print table/shard statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		maxSize, err := parseMaxTableSize()
		if err != nil {
			return err
		}

		tbl := crds.NewTable(crds.Config{MaxTableSize: maxSize})
		metrics := crdsmetrics.NewSet(prometheus.NewRegistry(), "crdsctl")
		tbl.SetMetrics(metrics)
		now := uint64(time.Now().UnixMilli())

		values := make([]crds.CrdsValue, 0, seedCount)
		for i := 0; i < seedCount; i++ {
			values = append(values, crds.CrdsValue{Data: &crds.LegacyContactInfo{
				ID:          syntheticPubkey(i),
				WallclockMs: now,
				Gossip:      fmt.Sprintf("10.0.%d.%d:8001", (i>>8)&0xff, i&0xff),
			}})
		}

		failed := tbl.InsertValues(values, 60_000, func() uint64 { return now })

		size, cursor, purgedLen := metrics.Snapshot()
		fmt.Printf("inserted=%d failed=%d table_size=%d purged_len=%d shard_matches(all)=%d\n",
			seedCount-len(failed), len(failed), tbl.Len(), tbl.PurgedLen(), len(tbl.GetBitmaskMatches(0, 0)))
		fmt.Printf("metric crds_table_size=%.0f crds_table_cursor=%.0f crds_table_purged_len=%.0f\n",
			size, cursor, purgedLen)
		return nil
	},
}

func syntheticPubkey(i int) common.Pubkey {
	sum := sha256.Sum256([]byte(fmt.Sprintf("crdsctl-seed-%d", i)))
	return common.BytesToPubkey(sum[:])
}
