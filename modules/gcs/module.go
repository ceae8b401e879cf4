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

package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/sdk"
)

const (
	// DefaultMaxResults caps object listings when no limit is given
	DefaultMaxResults = 1000
	// DefaultSignedURLExpiry is the signed URL lifetime when no expiry is given
	DefaultSignedURLExpiry = 15 * time.Minute
)

// GCSModule stores and retrieves objects in Google Cloud Storage for
// generated flows. It authenticates with a service account key file, inline
// key JSON, or Application Default Credentials, and can mint V4 signed URLs
// for delegated access.
type GCSModule struct {
	*sdk.BaseModule
	client        *storage.Client
	projectID     string
	defaultBucket string
}

var _ base.Module = (*GCSModule)(nil)

// BucketInfo describes one bucket in the project
type BucketInfo struct {
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	StorageClass string    `json:"storage_class"`
	Created      time.Time `json:"created"`
}

// ObjectInfo describes one object without its content
type ObjectInfo struct {
	Name         string            `json:"name"`
	Bucket       string            `json:"bucket"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	Updated      time.Time         `json:"updated"`
	Generation   int64             `json:"generation"`
	StorageClass string            `json:"storage_class"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SignedURLInfo carries a time-limited delegation URL
type SignedURLInfo struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New creates a GCS module bound to the given configuration. The storage
// client is not built until Connect.
func New(cfg *base.ModuleConfig) *GCSModule {
	return &GCSModule{
		BaseModule: sdk.NewBaseModule("gcs", cfg),
	}
}

// Connect builds the storage client and verifies connectivity. Credentials
// come from the credentials_file credential, the credentials_json credential,
// or Application Default Credentials when neither is set. With a
// default_bucket option the bucket's attributes are fetched; otherwise one
// bucket of project_id is listed.
func (m *GCSModule) Connect(ctx context.Context) error {
	cfg := m.Config()
	if cfg == nil {
		return base.NewModuleError("gcs", "Connect", "module config is required", nil)
	}

	m.projectID = cfg.StringOption("project_id", "")
	m.defaultBucket = cfg.StringOption("default_bucket", cfg.StringOption("bucket", ""))

	var opts []option.ClientOption
	if credFile := cfg.Credential("credentials_file"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	} else if credJSON := cfg.Credential("credentials_json"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	// Custom endpoint points the client at a local emulator
	if endpoint := cfg.StringOption("endpoint", ""); endpoint != "" {
		if err := base.ValidateEndpoint(endpoint, base.EndpointOptions{}); err != nil {
			return base.NewModuleError(m.Name(), "Connect", "invalid endpoint", err)
		}
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to create GCS client", err)
	}

	if err := m.verify(ctx, client); err != nil {
		_ = client.Close()
		return base.NewModuleError(m.Name(), "Connect", "failed to verify GCS connectivity", err)
	}

	m.client = client
	m.SetConnected(true)
	m.Logf("Connected to GCS (project: %s, bucket: %s)", m.projectID, m.defaultBucket)
	return nil
}

func (m *GCSModule) verify(ctx context.Context, client *storage.Client) error {
	switch {
	case m.defaultBucket != "":
		_, err := client.Bucket(m.defaultBucket).Attrs(ctx)
		return err
	case m.projectID != "":
		it := client.Buckets(ctx, m.projectID)
		if _, err := it.Next(); err != nil && err != iterator.Done {
			return err
		}
		return nil
	default:
		// No bucket or project to probe; client construction already
		// validated the credentials' shape.
		return nil
	}
}

// Close releases the storage client
func (m *GCSModule) Close(ctx context.Context) error {
	var err error
	if m.client != nil {
		err = m.client.Close()
		m.client = nil
	}
	if m.IsConnected() {
		m.SetConnected(false)
	}
	return err
}

// HealthCheck verifies the storage service is reachable
func (m *GCSModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "GCS client not initialized",
			Timestamp: time.Now(),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := m.verify(ctx, m.client)
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
			"project_id":     m.projectID,
			"default_bucket": m.defaultBucket,
		},
	}, nil
}

// ListBuckets returns all buckets in the configured project
func (m *GCSModule) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	if err := m.RequireConnected("ListBuckets"); err != nil {
		return nil, err
	}
	if m.projectID == "" {
		return nil, base.NewModuleError(m.Name(), "ListBuckets", "project_id option is required to list buckets", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	buckets := make([]BucketInfo, 0)
	it := m.client.Buckets(ctx, m.projectID)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "ListBuckets", "failed to list buckets", err)
		}
		buckets = append(buckets, BucketInfo{
			Name:         attrs.Name,
			Location:     attrs.Location,
			StorageClass: attrs.StorageClass,
			Created:      attrs.Created,
		})
	}
	return buckets, nil
}

// CreateBucket creates a bucket in the configured project
func (m *GCSModule) CreateBucket(ctx context.Context, name, location, storageClass string) error {
	if err := m.RequireConnected("CreateBucket"); err != nil {
		return err
	}
	if name == "" {
		return base.NewModuleError(m.Name(), "CreateBucket", "bucket name is required", nil)
	}
	if m.projectID == "" {
		return base.NewModuleError(m.Name(), "CreateBucket", "project_id option is required to create buckets", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	var attrs *storage.BucketAttrs
	if location != "" || storageClass != "" {
		attrs = &storage.BucketAttrs{Location: location, StorageClass: storageClass}
	}
	if err := m.client.Bucket(name).Create(ctx, m.projectID, attrs); err != nil {
		return base.NewModuleError(m.Name(), "CreateBucket", fmt.Sprintf("failed to create bucket %s", name), err)
	}

	m.Logf("Created bucket: %s", name)
	return nil
}

// DeleteBucket deletes a bucket. With force set, every object in the bucket
// is deleted first; without it, deleting a non-empty bucket fails.
func (m *GCSModule) DeleteBucket(ctx context.Context, name string, force bool) error {
	if err := m.RequireConnected("DeleteBucket"); err != nil {
		return err
	}
	if name == "" {
		return base.NewModuleError(m.Name(), "DeleteBucket", "bucket name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	bucket := m.client.Bucket(name)
	if force {
		it := bucket.Objects(ctx, nil)
		for {
			attrs, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return base.NewModuleError(m.Name(), "DeleteBucket", "failed to enumerate objects for forced delete", err)
			}
			if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
				return base.NewModuleError(m.Name(), "DeleteBucket",
					fmt.Sprintf("failed to delete object %s during forced delete", attrs.Name), err)
			}
		}
	}

	if err := bucket.Delete(ctx); err != nil {
		return base.NewModuleError(m.Name(), "DeleteBucket", fmt.Sprintf("failed to delete bucket %s", name), err)
	}

	m.Logf("Deleted bucket: %s (force: %t)", name, force)
	return nil
}

// ListObjects lists objects in a bucket, optionally filtered by prefix
func (m *GCSModule) ListObjects(ctx context.Context, bucketName, prefix string, maxResults int) ([]ObjectInfo, error) {
	bucketName, err := m.resolveBucket("ListObjects", bucketName)
	if err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	objects := make([]ObjectInfo, 0)
	it := m.client.Bucket(bucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	for len(objects) < maxResults {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "ListObjects", "failed to list objects", err)
		}
		objects = append(objects, objectInfo(attrs))
	}
	return objects, nil
}

// Upload writes content to an object, overwriting any existing object
func (m *GCSModule) Upload(ctx context.Context, bucketName, objectName string, content []byte, contentType string) error {
	bucketName, err := m.resolveBucket("Upload", bucketName)
	if err != nil {
		return err
	}
	if objectName == "" {
		return base.NewModuleError(m.Name(), "Upload", "object name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w := m.client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return base.NewModuleError(m.Name(), "Upload", fmt.Sprintf("failed to write object %s", objectName), err)
	}
	// Close commits the upload; errors here mean the object was not written
	if err := w.Close(); err != nil {
		return base.NewModuleError(m.Name(), "Upload", fmt.Sprintf("failed to upload object %s", objectName), err)
	}

	m.Logf("Uploaded object: %s/%s (%d bytes)", bucketName, objectName, len(content))
	return nil
}

// Download reads an object's full content
func (m *GCSModule) Download(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	bucketName, err := m.resolveBucket("Download", bucketName)
	if err != nil {
		return nil, err
	}
	if objectName == "" {
		return nil, base.NewModuleError(m.Name(), "Download", "object name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	r, err := m.client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Download", fmt.Sprintf("failed to open object %s", objectName), err)
	}

	content, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Download", "failed to read object content", err)
	}
	return content, nil
}

// GetMetadata fetches object attributes without downloading content
func (m *GCSModule) GetMetadata(ctx context.Context, bucketName, objectName string) (*ObjectInfo, error) {
	bucketName, err := m.resolveBucket("GetMetadata", bucketName)
	if err != nil {
		return nil, err
	}
	if objectName == "" {
		return nil, base.NewModuleError(m.Name(), "GetMetadata", "object name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	attrs, err := m.client.Bucket(bucketName).Object(objectName).Attrs(ctx)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetMetadata", fmt.Sprintf("failed to get attributes of %s", objectName), err)
	}

	info := objectInfo(attrs)
	return &info, nil
}

// DeleteObject deletes an object
func (m *GCSModule) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	bucketName, err := m.resolveBucket("DeleteObject", bucketName)
	if err != nil {
		return err
	}
	if objectName == "" {
		return base.NewModuleError(m.Name(), "DeleteObject", "object name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if err := m.client.Bucket(bucketName).Object(objectName).Delete(ctx); err != nil {
		return base.NewModuleError(m.Name(), "DeleteObject", fmt.Sprintf("failed to delete object %s", objectName), err)
	}

	m.Logf("Deleted object: %s/%s", bucketName, objectName)
	return nil
}

// Copy performs a server-side copy between objects. Content never transits
// the caller.
func (m *GCSModule) Copy(ctx context.Context, srcBucket, srcObject, dstBucket, dstObject string) error {
	if err := m.RequireConnected("Copy"); err != nil {
		return err
	}
	if srcBucket == "" {
		srcBucket = m.defaultBucket
	}
	if dstBucket == "" {
		dstBucket = m.defaultBucket
	}
	if srcBucket == "" || dstBucket == "" {
		return base.NewModuleError(m.Name(), "Copy", "bucket name is required", nil)
	}
	if srcObject == "" || dstObject == "" {
		return base.NewModuleError(m.Name(), "Copy", "source and destination object names are required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	src := m.client.Bucket(srcBucket).Object(srcObject)
	dst := m.client.Bucket(dstBucket).Object(dstObject)
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return base.NewModuleError(m.Name(), "Copy", "failed to copy object", err)
	}

	m.Logf("Copied: %s/%s -> %s/%s", srcBucket, srcObject, dstBucket, dstObject)
	return nil
}

// SignedURL mints a V4 signed URL for one object. Signing requires service
// account credentials (credentials_file or credentials_json); Application
// Default Credentials without a private key cannot sign.
func (m *GCSModule) SignedURL(bucketName, objectName, method string, expiry time.Duration) (*SignedURLInfo, error) {
	bucketName, err := m.resolveBucket("SignedURL", bucketName)
	if err != nil {
		return nil, err
	}
	if objectName == "" {
		return nil, base.NewModuleError(m.Name(), "SignedURL", "object name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	switch method {
	case "":
		method = http.MethodGet
	case http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodHead:
	default:
		return nil, base.NewModuleError(m.Name(), "SignedURL",
			fmt.Sprintf("unsupported method %q (use GET, PUT, DELETE, or HEAD)", method), nil)
	}

	if expiry <= 0 {
		expiry = DefaultSignedURLExpiry
	}
	expiresAt := time.Now().Add(expiry)

	url, err := m.client.Bucket(bucketName).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  method,
		Expires: expiresAt,
	})
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "SignedURL", "failed to sign URL", err)
	}

	return &SignedURLInfo{
		URL:       url,
		Method:    method,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *GCSModule) resolveBucket(op, bucketName string) (string, error) {
	if err := m.RequireConnected(op); err != nil {
		return "", err
	}
	if bucketName != "" {
		return bucketName, nil
	}
	if m.defaultBucket != "" {
		return m.defaultBucket, nil
	}
	return "", base.NewModuleError(m.Name(), op, "bucket name is required (no default_bucket configured)", nil)
}

func objectInfo(attrs *storage.ObjectAttrs) ObjectInfo {
	info := ObjectInfo{
		Name:         attrs.Name,
		Bucket:       attrs.Bucket,
		Size:         attrs.Size,
		ContentType:  attrs.ContentType,
		Updated:      attrs.Updated,
		Generation:   attrs.Generation,
		StorageClass: attrs.StorageClass,
	}
	if len(attrs.Metadata) > 0 {
		info.Metadata = make(map[string]string, len(attrs.Metadata))
		for k, v := range attrs.Metadata {
			info.Metadata[k] = v
		}
	}
	return info
}
