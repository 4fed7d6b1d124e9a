// Package bucketgate provides an authenticated HTTP gateway in front of a
// single S3-compatible bucket.
//
// Every caller is confined to a namespace derived from their username. A file
// uploaded by "alice" under the relative key "reports/q1.pdf" is stored as
// "alice/reports/q1.pdf", and "alice" can only download or delete keys under
// that prefix.
//
// # Key Components
//
//   - Gateway: upload, presigned download and delete scoped to one owner
//   - ObjectStore: the object-storage contract (see the s3store package)
//   - Authenticator: credential verification (see the keybackend and database packages)
//   - ResolvePath / IsValidPath: relative key construction and validation
//
// # Example Usage
//
//	gw := bucketgate.NewGateway(store, bucketgate.GatewayConfig{})
//
//	res, err := gw.Upload(ctx, "alice", bucketgate.UploadRequest{
//	    Filename: "q1.pdf",
//	    Path:     "reports",
//	    Size:     size,
//	}, file)
//
//	dl, err := gw.PresignDownload(ctx, "alice", "reports/q1.pdf")
//
// See the http package for the REST API built on top of Gateway.
package bucketgate
