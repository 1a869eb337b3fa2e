// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems (Ceph, SeaweedFS,
// Garage) without the AWS SDK.
//
//	store, err := minioblob.New(minioblob.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "packages",
//	    Prefix:    "hadith-2024.1",
//	})
//	hf, err := hfabric.Open(ctx, hfabric.Remote(store))
package minio
