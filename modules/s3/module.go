// Copyright 2025 NL2Flow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/sdk"
)

// DefaultPresignExpiry is how long presigned URLs stay valid when the caller
// does not choose an expiry.
const DefaultPresignExpiry = time.Hour

// S3Module drives Amazon S3 and S3-compatible object stores (MinIO,
// DigitalOcean Spaces, Cloudflare R2) for generated flows.
type S3Module struct {
	*sdk.BaseModule
	client        *s3.Client
	presignClient *s3.PresignClient
	defaultBucket string
}

var _ base.Module = (*S3Module)(nil)

// ObjectInfo describes one object in a listing
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	StorageClass string    `json:"storage_class"`
}

// ObjectContent carries a downloaded object with its metadata
type ObjectContent struct {
	Key           string    `json:"key"`
	Content       []byte    `json:"content"`
	ContentType   string    `json:"content_type"`
	ContentLength int64     `json:"content_length"`
	ETag          string    `json:"etag"`
	LastModified  time.Time `json:"last_modified"`
}

// UploadResult reports a completed upload
type UploadResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	ETag   string `json:"etag"`
}

// New creates an S3 module bound to the given configuration. The client is
// not built until Connect.
func New(cfg *base.ModuleConfig) *S3Module {
	return &S3Module{
		BaseModule: sdk.NewBaseModule("s3", cfg),
	}
}

// Connect builds the S3 client and verifies connectivity. With a
// default_bucket option set, connectivity is verified against that bucket;
// otherwise by listing buckets.
func (m *S3Module) Connect(ctx context.Context) error {
	cfg := m.Config()
	if cfg == nil {
		return base.NewModuleError("s3", "Connect", "module config is required", nil)
	}

	region := cfg.StringOption("region", "us-east-1")
	forcePathStyle := cfg.BoolOption("force_path_style", false)

	// ConnectionURL doubles as the custom endpoint for S3-compatible stores
	endpoint := cfg.ConnectionURL
	if endpoint == "" {
		endpoint = cfg.StringOption("endpoint", "")
	}
	if endpoint != "" {
		if err := base.ValidateEndpoint(endpoint, base.EndpointOptions{}); err != nil {
			return base.NewModuleError(m.Name(), "Connect", "invalid endpoint", err)
		}
	}

	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	// Explicit credentials when provided, default credential chain otherwise
	accessKeyID := cfg.Credential("access_key_id")
	secretAccessKey := cfg.Credential("secret_access_key")
	if accessKeyID != "" && secretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(
			accessKeyID, secretAccessKey, cfg.Credential("session_token"))
		optFns = append(optFns, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to load AWS config", err)
	}

	s3Options := []func(*s3.Options){}
	if endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if forcePathStyle {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	m.client = s3.NewFromConfig(awsCfg, s3Options...)
	m.presignClient = s3.NewPresignClient(m.client)
	m.defaultBucket = cfg.StringOption("default_bucket", cfg.StringOption("bucket", ""))

	if m.defaultBucket != "" {
		_, err = m.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(m.defaultBucket),
		})
	} else {
		_, err = m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	}
	if err != nil {
		m.client = nil
		m.presignClient = nil
		return base.NewModuleError(m.Name(), "Connect", "failed to verify S3 connectivity", err)
	}

	m.SetConnected(true)
	m.Logf("Connected to S3 (region: %s, bucket: %s)", region, m.defaultBucket)
	return nil
}

// Close releases the S3 clients
func (m *S3Module) Close(ctx context.Context) error {
	m.client = nil
	m.presignClient = nil
	if m.IsConnected() {
		m.SetConnected(false)
	}
	return nil
}

// HealthCheck verifies S3 connectivity
func (m *S3Module) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "S3 client not initialized",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	var err error
	if m.defaultBucket != "" {
		_, err = m.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(m.defaultBucket),
		})
	} else {
		_, err = m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	}
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     err.Error(),
			Latency:   latency,
			Timestamp: time.Now(),
		}, nil
	}

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"default_bucket": m.defaultBucket,
			"region":         m.Config().StringOption("region", "us-east-1"),
		},
	}, nil
}

// ListObjects lists objects in a bucket, optionally filtered by prefix.
// maxKeys <= 0 means the S3 default of 1000.
func (m *S3Module) ListObjects(ctx context.Context, bucket, prefix string, maxKeys int32) ([]ObjectInfo, error) {
	if err := m.RequireConnected("ListObjects"); err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if maxKeys <= 0 {
		maxKeys = 1000
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(m.bucketOrDefault(bucket)),
		MaxKeys: aws.Int32(maxKeys),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	output, err := m.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "ListObjects", "failed to list objects", err)
	}

	objects := make([]ObjectInfo, 0, len(output.Contents))
	for _, obj := range output.Contents {
		objects = append(objects, ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         strings.Trim(aws.ToString(obj.ETag), "\""),
			StorageClass: string(obj.StorageClass),
		})
	}
	return objects, nil
}

// ListBuckets returns the names of all accessible buckets
func (m *S3Module) ListBuckets(ctx context.Context) ([]string, error) {
	if err := m.RequireConnected("ListBuckets"); err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	output, err := m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "ListBuckets", "failed to list buckets", err)
	}

	names := make([]string, 0, len(output.Buckets))
	for _, b := range output.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

// GetObject downloads an object and returns its content and metadata
func (m *S3Module) GetObject(ctx context.Context, bucket, key string) (*ObjectContent, error) {
	if err := m.RequireConnected("GetObject"); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, base.NewModuleError(m.Name(), "GetObject", "object key is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	output, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucketOrDefault(bucket)),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetObject", fmt.Sprintf("failed to get object: %s", key), err)
	}
	defer func() { _ = output.Body.Close() }()

	content, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetObject", "failed to read object content", err)
	}

	return &ObjectContent{
		Key:           key,
		Content:       content,
		ContentType:   aws.ToString(output.ContentType),
		ContentLength: aws.ToInt64(output.ContentLength),
		ETag:          strings.Trim(aws.ToString(output.ETag), "\""),
		LastModified:  aws.ToTime(output.LastModified),
	}, nil
}

// PutObject uploads content as an object and returns its ETag
func (m *S3Module) PutObject(ctx context.Context, bucket, key string, content []byte, contentType string) (string, error) {
	if err := m.RequireConnected("PutObject"); err != nil {
		return "", err
	}
	if key == "" {
		return "", base.NewModuleError(m.Name(), "PutObject", "object key is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	output, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucketOrDefault(bucket)),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", base.NewModuleError(m.Name(), "PutObject", fmt.Sprintf("failed to put object: %s", key), err)
	}

	return strings.Trim(aws.ToString(output.ETag), "\""), nil
}

// UploadFile uploads a local file. An empty key defaults to the file's base
// name.
func (m *S3Module) UploadFile(ctx context.Context, localPath, bucket, key string) (*UploadResult, error) {
	if err := m.RequireConnected("UploadFile"); err != nil {
		return nil, err
	}
	if localPath == "" {
		return nil, base.NewModuleError(m.Name(), "UploadFile", "local path is required", nil)
	}
	if key == "" {
		key = filepath.Base(localPath)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "UploadFile", fmt.Sprintf("failed to open file: %s", localPath), err)
	}
	defer func() { _ = file.Close() }()

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	resolvedBucket := m.bucketOrDefault(bucket)
	output, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(resolvedBucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "UploadFile", fmt.Sprintf("failed to upload file: %s", localPath), err)
	}

	m.Logf("Uploaded %s to s3://%s/%s", localPath, resolvedBucket, key)
	return &UploadResult{
		Bucket: resolvedBucket,
		Key:    key,
		ETag:   strings.Trim(aws.ToString(output.ETag), "\""),
	}, nil
}

// DownloadFile downloads an object to a local path and returns the number of
// bytes written.
func (m *S3Module) DownloadFile(ctx context.Context, bucket, key, localPath string) (int64, error) {
	if err := m.RequireConnected("DownloadFile"); err != nil {
		return 0, err
	}
	if key == "" || localPath == "" {
		return 0, base.NewModuleError(m.Name(), "DownloadFile", "object key and local path are required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	output, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucketOrDefault(bucket)),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "DownloadFile", fmt.Sprintf("failed to get object: %s", key), err)
	}
	defer func() { _ = output.Body.Close() }()

	file, err := os.Create(localPath)
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "DownloadFile", fmt.Sprintf("failed to create file: %s", localPath), err)
	}
	defer func() { _ = file.Close() }()

	written, err := io.Copy(file, output.Body)
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "DownloadFile", "failed to write file content", err)
	}

	m.Logf("Downloaded s3://%s/%s to %s (%d bytes)", m.bucketOrDefault(bucket), key, localPath, written)
	return written, nil
}

// DeleteObject deletes a single object
func (m *S3Module) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := m.RequireConnected("DeleteObject"); err != nil {
		return err
	}
	if key == "" {
		return base.NewModuleError(m.Name(), "DeleteObject", "object key is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucketOrDefault(bucket)),
		Key:    aws.String(key),
	})
	if err != nil {
		return base.NewModuleError(m.Name(), "DeleteObject", fmt.Sprintf("failed to delete object: %s", key), err)
	}
	return nil
}

// DeleteObjects deletes a batch of objects and returns how many were removed
func (m *S3Module) DeleteObjects(ctx context.Context, bucket string, keys []string) (int, error) {
	if err := m.RequireConnected("DeleteObjects"); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, base.NewModuleError(m.Name(), "DeleteObjects", "at least one key is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	output, err := m.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(m.bucketOrDefault(bucket)),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "DeleteObjects", "failed to delete objects", err)
	}

	return len(keys) - len(output.Errors), nil
}

// PresignURL generates a time-limited URL for direct object access. Method
// is GET for downloads or PUT for uploads; expiry <= 0 uses the default of
// one hour.
func (m *S3Module) PresignURL(ctx context.Context, bucket, key, method string, expiry time.Duration) (string, error) {
	if err := m.RequireConnected("PresignURL"); err != nil {
		return "", err
	}
	if key == "" {
		return "", base.NewModuleError(m.Name(), "PresignURL", "object key is required", nil)
	}
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	resolvedBucket := m.bucketOrDefault(bucket)

	switch strings.ToUpper(method) {
	case "", "GET":
		presigned, err := m.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(resolvedBucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(expiry))
		if err != nil {
			return "", base.NewModuleError(m.Name(), "PresignURL", "failed to presign GET", err)
		}
		return presigned.URL, nil
	case "PUT":
		presigned, err := m.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(resolvedBucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(expiry))
		if err != nil {
			return "", base.NewModuleError(m.Name(), "PresignURL", "failed to presign PUT", err)
		}
		return presigned.URL, nil
	default:
		return "", base.NewModuleError(m.Name(), "PresignURL",
			fmt.Sprintf("unsupported method: %s (use GET or PUT)", method), nil)
	}
}

// bucketOrDefault returns the given bucket or falls back to the configured
// default bucket.
func (m *S3Module) bucketOrDefault(bucket string) string {
	if bucket != "" {
		return bucket
	}
	return m.defaultBucket
}
