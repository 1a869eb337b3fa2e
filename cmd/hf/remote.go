package main

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hupe1980/hfabric/blobstore"
	"github.com/hupe1980/hfabric/blobstore/minio"
	"github.com/hupe1980/hfabric/blobstore/s3"
	"github.com/hupe1980/hfabric/publish"
)

var errNoRemote = errors.New("no remote configured (set remote.type and remote.bucket)")

// remoteStore connects to the blob store described by the remote config.
func (a *app) remoteStore(ctx context.Context) (blobstore.BlobStore, error) {
	r := a.cfg.Remote
	if r.Type == "" || r.Bucket == "" {
		return nil, errNoRemote
	}
	switch r.Type {
	case "s3":
		opts := []s3.Option{s3.WithPrefix(r.Prefix)}
		if r.Region != "" {
			opts = append(opts, s3.WithRegion(r.Region))
		}
		if r.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(r.Endpoint))
		}
		return s3.New(ctx, r.Bucket, opts...)
	case "minio":
		access, secret, err := a.cfg.MinIOCredentials()
		if err != nil {
			return nil, err
		}
		return minio.New(minio.Config{
			Endpoint:  r.Endpoint,
			AccessKey: access,
			SecretKey: secret,
			Region:    r.Region,
			Secure:    r.MinIO.Secure,
			Bucket:    r.Bucket,
			Prefix:    r.Prefix,
		})
	}
	return nil, fmt.Errorf("unknown remote type %q", r.Type)
}

// registry returns the DynamoDB version registry, or nil when none is
// configured.
func (a *app) registry(ctx context.Context) (publish.Registry, error) {
	if a.cfg.Registry.Table == "" {
		return nil, nil
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if a.cfg.Remote.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(a.cfg.Remote.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewRegistry(dynamodb.NewFromConfig(cfg), a.cfg.Registry.Table), nil
}
