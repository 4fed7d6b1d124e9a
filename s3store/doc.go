// Package s3store implements bucketgate.ObjectStore on top of the AWS SDK for
// Go v2. It works against AWS S3 and S3-compatible services such as MinIO
// (set Endpoint and PathStyle).
package s3store
