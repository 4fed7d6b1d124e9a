// Package clientcli provides a client library for bucketgate servers.
//
// It wraps the upload, download and delete endpoints, authenticating every
// request with HTTP Basic credentials. Downloads resolve a presigned URL
// from the server and then fetch the object directly from the bucket.
// The package includes profile-based configuration for managing connections
// to multiple servers.
//
// # Basic Usage
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:8000",
//		Username: "alice",
//		Password: "s3cret",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath:  "./report.pdf",
//		RemotePath: "documents",
//		Tag:        clientcli.Tag{Key: "project", Value: "apollo"},
//	})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.Lookup("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(profile.Config())
package clientcli
