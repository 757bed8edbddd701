package bucket

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"         //nolint:staticcheck // TODO: Migrate to aws-sdk-go-v2
	"github.com/aws/aws-sdk-go/aws/awserr"  //nolint:staticcheck
	"github.com/aws/aws-sdk-go/aws/session" //nolint:staticcheck
	"github.com/aws/aws-sdk-go/service/s3"  //nolint:staticcheck

	"github.com/tunearena/gateway/internal/arena"
)

// S3 stores objects in an S3 bucket. The public URL is either the
// configured CDN base or the bucket's virtual-hosted endpoint.
type S3 struct {
	client  *s3.S3
	bucket  string
	region  string
	baseURL string
}

func NewS3(region, bucket, baseURL string) *S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
	}))

	return &S3{
		client:  s3.New(sess),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, &arena.NotFoundError{Resource: "object", ID: key}
		}
		return nil, storageErr("get", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, storageErr("get", key, err)
	}
	return data, nil
}

func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string, allowOverwrite bool) error {
	if !allowOverwrite {
		_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return storageErr("put", key, fmt.Errorf("object already exists"))
		}
	}

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return storageErr("put", key, err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return storageErr("delete", key, err)
	}
	return nil
}

func (s *S3) PublicURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
