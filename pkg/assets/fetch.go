// Package assets optionally prefetches a single demo clip from S3 before
// the sync engine starts, for environments that keep source clips in
// object storage rather than shipping them in the repo. This is demo
// harness plumbing, outside the sync engine's own scope; it exists so
// the teacher's AWS SDK dependency is exercised rather than dropped.
//
// Adapted from the teacher's pkg/videoFs/downloadSegmentFromS3.go:
// same env-var credential lookup, same error shape, trimmed from
// "download a paginated segment of a collection" down to "fetch one
// named object".
package assets

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"avsync/pkg/sharedTypes"
)

// FetchDemoClip downloads src into destDir (creating it if necessary)
// and returns the local path. Credentials and region are read from the
// standard AWS environment variables; if they're unset, this returns an
// error the caller is expected to treat as "prefetch unavailable, fall
// back to a local/synthetic source" rather than fatal.
func FetchDemoClip(src sharedTypes.MediaSource, destDir string) (string, error) {
	log.Printf("assets: fetching s3://%s/%s", src.Bucket, src.Key)

	region := os.Getenv("AWS_DEFAULT_REGION")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if region == "" || accessKey == "" || secretKey == "" {
		return "", errors.New("assets: missing one or more required environment variables: AWS_DEFAULT_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return "", err
	}
	client := s3.New(sess)

	if err := os.MkdirAll(destDir, os.ModePerm); err != nil {
		return "", err
	}

	result, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(src.Bucket),
		Key:    aws.String(src.Key),
	})
	if err != nil {
		return "", fmt.Errorf("assets: get object: %w", err)
	}
	defer result.Body.Close()

	localPath := filepath.Join(destDir, filepath.Base(src.Key))
	out, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, result.Body); err != nil {
		return "", err
	}

	log.Printf("assets: fetched %s -> %s", src.Key, localPath)
	return localPath, nil
}
