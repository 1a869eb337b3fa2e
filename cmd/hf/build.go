package main

import (
	"fmt"
	"time"

	"github.com/hupe1980/hfabric"
	"github.com/hupe1980/hfabric/blobstore"
	"github.com/hupe1980/hfabric/builder"
	"github.com/hupe1980/hfabric/internal/blockfile"
	"github.com/hupe1980/hfabric/internal/resource"
	"github.com/hupe1980/hfabric/publish"
	"github.com/spf13/cobra"
)

func buildCmd(a *app) *cobra.Command {
	var (
		name, version, compression string
		timeout                    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "build INPUT_DIR OUT_DIR",
		Short: "Build a package from raw scraper output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compression == "" {
				compression = a.cfg.Build.Compression
			}
			comp, err := blockfile.ParseCompression(compression)
			if err != nil {
				return err
			}
			if timeout == 0 {
				timeout = a.cfg.Build.Timeout
			}
			res, err := hfabric.Build(cmd.Context(), args[0], args[1], builder.Options{
				Name:        name,
				Version:     version,
				Compression: comp,
				Timeout:     timeout,
				Resources:   resource.NewController(resource.Config{MaxWorkers: a.cfg.Build.Workers}),
			}, hfabric.WithLogger(a.logger))
			if err != nil {
				return err
			}
			s := res.Summary
			fmt.Fprintf(cmd.OutOrStdout(), "built %s: %d nodes from %d files (%d read, %d skipped, %d chains) in %s\n",
				res.Path, res.Manifest.NodeCount, s.Files, s.Read, s.Skipped, s.Chains, res.Duration.Round(time.Millisecond))
			for _, reason := range s.ReasonNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped %-16s %d\n", reason, s.Reasons[reason])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Package name (default: base name of OUT_DIR)")
	cmd.Flags().StringVar(&version, "version", "", "Package version")
	cmd.Flags().StringVar(&compression, "compression", "", "Block compression (zstd, lz4, none)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Build timeout (0 disables)")
	return cmd
}

func publishCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "publish PACKAGE_DIR",
		Short: "Upload a built package to the remote store",
		Long: `publish registers the package version (when a registry table is
configured), uploads every data file and finally meta.json, then checks
that the remote copy matches the local one. --to publishes into a local
directory instead of the configured remote.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				dst blobstore.BlobStore
				err error
			)
			if to != "" {
				dst = blobstore.NewLocalStore(to)
			} else if dst, err = a.remoteStore(ctx); err != nil {
				return err
			}
			reg, err := a.registry(ctx)
			if err != nil {
				return err
			}
			res, err := publish.Publish(ctx, args[0], dst, publish.Options{
				Registry: reg,
				Resources: resource.NewController(resource.Config{
					MaxWorkers:    a.cfg.Build.Workers,
					IOBytesPerSec: a.cfg.IOBytesPerSec,
				}),
				Logger: a.logger.Logger,
			})
			if err != nil {
				return err
			}
			if err := publish.Verify(ctx, args[0], dst); err != nil {
				return fmt.Errorf("verify published package: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s@%s: %d files, %d bytes, digest %s\n",
				res.Name, res.Version, res.Files, res.Bytes, res.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Publish into this directory instead of the remote store")
	return cmd
}

func versionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "versions NAME",
		Short: "List the registered versions of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			if reg == nil {
				return fmt.Errorf("no registry configured (set registry.table)")
			}
			versions, err := reg.Versions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), versions)
		},
	}
}
