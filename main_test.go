package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tunearena/gateway/internal/bucket"
	"github.com/tunearena/gateway/internal/config"
)

func TestBuildBucketsLocal(t *testing.T) {
	cfg := &config.Config{Port: "8080", DataDir: t.TempDir()}

	audioBucket, metadataBucket := buildBuckets(cfg)
	assert.IsType(t, &bucket.Local{}, audioBucket)
	assert.IsType(t, &bucket.Local{}, metadataBucket)
}

func TestBuildBucketsRemote(t *testing.T) {
	cfg := &config.Config{
		Port:           "8080",
		DataDir:        t.TempDir(),
		AWSRegion:      "us-east-1",
		BucketAudio:    "arena-audio",
		BucketMetadata: "arena-metadata",
	}

	audioBucket, metadataBucket := buildBuckets(cfg)
	assert.IsType(t, &bucket.S3{}, audioBucket)
	assert.IsType(t, &bucket.S3{}, metadataBucket)
}

func TestBuildBucketsMixed(t *testing.T) {
	// Each bucket picks its backend independently.
	cfg := &config.Config{
		Port:        "8080",
		DataDir:     t.TempDir(),
		AWSRegion:   "us-east-1",
		BucketAudio: "arena-audio",
	}

	audioBucket, metadataBucket := buildBuckets(cfg)
	assert.IsType(t, &bucket.S3{}, audioBucket)
	assert.IsType(t, &bucket.Local{}, metadataBucket)

	cfg = &config.Config{
		Port:           "8080",
		DataDir:        t.TempDir(),
		AWSRegion:      "us-east-1",
		BucketMetadata: "arena-metadata",
	}

	audioBucket, metadataBucket = buildBuckets(cfg)
	assert.IsType(t, &bucket.Local{}, audioBucket)
	assert.IsType(t, &bucket.S3{}, metadataBucket)
}
