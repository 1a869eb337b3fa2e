package hfabric

import (
	"context"

	"github.com/hupe1980/hfabric/builder"
)

// Build reads the raw record files in inputDir and publishes a package at
// out. See builder.Build for the input formats and the publish protocol.
//
// Invalid records are skipped and reported in the returned summary as
// *BuildValidationError values. A build without any valid record fails with
// ErrNoValidRecords; one that exceeds opts.Timeout fails with
// ErrBuildTimeout. No partial package is ever visible at out.
func Build(ctx context.Context, inputDir, out string, opts builder.Options, optFns ...Option) (*builder.Result, error) {
	o := applyOptions(optFns)
	if opts.Logger == nil {
		opts.Logger = o.logger.Logger
	}

	res, err := builder.Build(ctx, inputDir, out, opts)

	nodes, skipped := 0, 0
	if res != nil && res.Summary != nil {
		skipped = res.Summary.Skipped
	}
	if res != nil && res.Manifest != nil {
		nodes = res.Manifest.NodeCount
	}
	o.logger.LogBuild(ctx, out, nodes, skipped, err)
	return res, err
}
