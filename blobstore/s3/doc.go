// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore and
// a DynamoDB-backed package version registry.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("packages/hadith-2024.1"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	hf, err := hfabric.Open(ctx, hfabric.Remote(store))
//
// # Features
//
//   - Range reads for partial fetches (block-file headers at open)
//   - Multipart streaming uploads and CRC32C-checked puts
//   - Automatic pagination for listing
//   - Conditional-write version registry (Registry)
package s3
