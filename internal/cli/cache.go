package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/cache"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clean the extraction cache",
	Long: `The extraction cache stores model-extracted claim facts under cache.dir so
re-running the same document skips the extraction call. Entries contain
claimant data; clear the cache when you are done with a case.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many entries the disk cache holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}
		st, err := disk.Stats()
		if err != nil {
			return fmt.Errorf("read cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "entries: %d (%d expired)\nsize:    %d bytes\n", st.Entries, st.Expired, st.Bytes)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired and unreadable entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}
		n, err := disk.Prune()
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d cache entries\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole disk cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}
		if err := disk.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cache cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheClearCmd)
}

func diskCache() (*cache.DiskCache, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return diskCacheFor(cfg)
}

func diskCacheFor(cfg *model.Config) (*cache.DiskCache, error) {
	if cfg.Cache.Dir == "" {
		return nil, errors.New("no disk cache configured (set cache.dir)")
	}
	return cache.NewDiskCache(cfg.Cache.Dir, time.Duration(cfg.Cache.DiskTTLHours)*time.Hour), nil
}
