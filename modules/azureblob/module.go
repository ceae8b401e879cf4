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

package azureblob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/sdk"
)

const (
	// DefaultMaxResults caps blob listings when no limit is given
	DefaultMaxResults = 1000
	// DefaultSASExpiry is the SAS URL lifetime when no expiry is given
	DefaultSASExpiry = time.Hour
)

// AzureBlobModule stores and retrieves objects in Azure Blob Storage for
// generated flows. It supports connection string, shared key, and managed
// identity authentication, and can mint SAS URLs for delegated access.
type AzureBlobModule struct {
	*sdk.BaseModule
	client           *azblob.Client
	serviceClient    *service.Client
	accountName      string
	defaultContainer string
}

var _ base.Module = (*AzureBlobModule)(nil)

// ContainerInfo describes one container in the storage account
type ContainerInfo struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"last_modified"`
}

// BlobInfo describes one blob without its content
type BlobInfo struct {
	Name         string            `json:"name"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	LastModified time.Time         `json:"last_modified"`
	ETag         string            `json:"etag"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SASInfo carries a signed delegation URL
type SASInfo struct {
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Permissions string    `json:"permissions"`
}

// New creates an Azure Blob module bound to the given configuration. Clients
// are not built until Connect.
func New(cfg *base.ModuleConfig) *AzureBlobModule {
	return &AzureBlobModule{
		BaseModule: sdk.NewBaseModule("azureblob", cfg),
	}
}

// Connect builds the storage clients and verifies connectivity. Exactly one
// authentication method is used, tried in order: the connection_string
// credential, the account_key credential (with the account_name option), or
// DefaultAzureCredential when use_managed_identity is set.
func (m *AzureBlobModule) Connect(ctx context.Context) error {
	cfg := m.Config()
	if cfg == nil {
		return base.NewModuleError("azureblob", "Connect", "module config is required", nil)
	}

	m.accountName = cfg.StringOption("account_name", "")
	m.defaultContainer = cfg.StringOption("default_container", "")

	connectionString := cfg.Credential("connection_string")
	accountKey := cfg.Credential("account_key")
	useManagedIdentity := cfg.BoolOption("use_managed_identity", false)

	var err error
	switch {
	case connectionString != "":
		m.client, err = azblob.NewClientFromConnectionString(connectionString, nil)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create client from connection string", err)
		}
		m.serviceClient, err = service.NewClientFromConnectionString(connectionString, nil)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create service client from connection string", err)
		}

	case accountKey != "":
		if m.accountName == "" {
			return base.NewModuleError(m.Name(), "Connect", "account_name option is required with account_key", nil)
		}
		cred, err := azblob.NewSharedKeyCredential(m.accountName, accountKey)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create shared key credential", err)
		}
		endpoint := serviceURL(m.accountName)
		m.client, err = azblob.NewClientWithSharedKeyCredential(endpoint, cred, nil)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create client", err)
		}
		m.serviceClient, err = service.NewClientWithSharedKeyCredential(endpoint, cred, nil)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create service client", err)
		}

	case useManagedIdentity:
		if m.accountName == "" {
			return base.NewModuleError(m.Name(), "Connect", "account_name option is required with managed identity", nil)
		}
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create Azure credential", err)
		}
		endpoint := serviceURL(m.accountName)
		m.client, err = azblob.NewClient(endpoint, cred, nil)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create client", err)
		}
		m.serviceClient, err = service.NewClient(endpoint, cred, nil)
		if err != nil {
			return base.NewModuleError(m.Name(), "Connect", "failed to create service client", err)
		}

	default:
		return base.NewModuleError(m.Name(), "Connect",
			"no authentication method configured (set connection_string, account_key, or use_managed_identity)", nil)
	}

	if _, err := m.serviceClient.GetProperties(ctx, nil); err != nil {
		m.client = nil
		m.serviceClient = nil
		return base.NewModuleError(m.Name(), "Connect", "failed to verify Azure Blob connectivity", err)
	}

	m.SetConnected(true)
	m.Logf("Connected to Azure Blob Storage (account: %s, container: %s)", m.accountName, m.defaultContainer)
	return nil
}

// Close releases the storage clients
func (m *AzureBlobModule) Close(ctx context.Context) error {
	m.client = nil
	m.serviceClient = nil
	if m.IsConnected() {
		m.SetConnected(false)
	}
	return nil
}

// HealthCheck verifies the storage account is reachable
func (m *AzureBlobModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.serviceClient == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "Azure Blob client not initialized",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	_, err := m.serviceClient.GetProperties(ctx, nil)
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
			"account_name":      m.accountName,
			"default_container": m.defaultContainer,
		},
	}, nil
}

// ListContainers returns all containers in the storage account
func (m *AzureBlobModule) ListContainers(ctx context.Context) ([]ContainerInfo, error) {
	if err := m.RequireConnected("ListContainers"); err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	containers := make([]ContainerInfo, 0)
	pager := m.serviceClient.NewListContainersPager(nil)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "ListContainers", "failed to list containers", err)
		}
		for _, item := range resp.ContainerItems {
			info := ContainerInfo{Name: strValue(item.Name)}
			if item.Properties != nil {
				info.LastModified = timeValue(item.Properties.LastModified)
			}
			containers = append(containers, info)
		}
	}
	return containers, nil
}

// CreateContainer creates a container
func (m *AzureBlobModule) CreateContainer(ctx context.Context, name string) error {
	if err := m.RequireConnected("CreateContainer"); err != nil {
		return err
	}
	if name == "" {
		return base.NewModuleError(m.Name(), "CreateContainer", "container name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if _, err := m.client.CreateContainer(ctx, name, nil); err != nil {
		return base.NewModuleError(m.Name(), "CreateContainer", fmt.Sprintf("failed to create container %s", name), err)
	}

	m.Logf("Created container: %s", name)
	return nil
}

// DeleteContainer deletes a container and all blobs in it
func (m *AzureBlobModule) DeleteContainer(ctx context.Context, name string) error {
	if err := m.RequireConnected("DeleteContainer"); err != nil {
		return err
	}
	if name == "" {
		return base.NewModuleError(m.Name(), "DeleteContainer", "container name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if _, err := m.client.DeleteContainer(ctx, name, nil); err != nil {
		return base.NewModuleError(m.Name(), "DeleteContainer", fmt.Sprintf("failed to delete container %s", name), err)
	}

	m.Logf("Deleted container: %s", name)
	return nil
}

// ListBlobs lists blobs in a container, optionally filtered by prefix
func (m *AzureBlobModule) ListBlobs(ctx context.Context, containerName, prefix string, maxResults int) ([]BlobInfo, error) {
	containerName, err := m.resolveContainer("ListBlobs", containerName)
	if err != nil {
		return nil, err
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	limit := int32(maxResults)

	pager := m.serviceClient.NewContainerClient(containerName).NewListBlobsFlatPager(&container.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: &limit,
	})

	blobs := make([]BlobInfo, 0)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "ListBlobs", "failed to list blobs", err)
		}
		for _, item := range resp.Segment.BlobItems {
			info := BlobInfo{Name: strValue(item.Name)}
			if item.Properties != nil {
				info.Size = int64Value(item.Properties.ContentLength)
				info.ContentType = strValue(item.Properties.ContentType)
				info.LastModified = timeValue(item.Properties.LastModified)
				info.ETag = strValue((*string)(item.Properties.ETag))
			}
			blobs = append(blobs, info)
		}
	}
	return blobs, nil
}

// Upload writes content to a blob, overwriting any existing blob
func (m *AzureBlobModule) Upload(ctx context.Context, containerName, blobName string, content []byte, contentType string) error {
	containerName, err := m.resolveContainer("Upload", containerName)
	if err != nil {
		return err
	}
	if blobName == "" {
		return base.NewModuleError(m.Name(), "Upload", "blob name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = m.client.UploadBuffer(ctx, containerName, blobName, content, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return base.NewModuleError(m.Name(), "Upload", fmt.Sprintf("failed to upload blob %s", blobName), err)
	}

	m.Logf("Uploaded blob: %s/%s (%d bytes)", containerName, blobName, len(content))
	return nil
}

// Download reads a blob's full content
func (m *AzureBlobModule) Download(ctx context.Context, containerName, blobName string) ([]byte, error) {
	containerName, err := m.resolveContainer("Download", containerName)
	if err != nil {
		return nil, err
	}
	if blobName == "" {
		return nil, base.NewModuleError(m.Name(), "Download", "blob name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	blobClient := m.client.ServiceClient().NewContainerClient(containerName).NewBlobClient(blobName)
	resp, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Download", fmt.Sprintf("failed to download blob %s", blobName), err)
	}

	content, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Download", "failed to read blob content", err)
	}
	return content, nil
}

// GetProperties fetches blob metadata without downloading content
func (m *AzureBlobModule) GetProperties(ctx context.Context, containerName, blobName string) (*BlobInfo, error) {
	containerName, err := m.resolveContainer("GetProperties", containerName)
	if err != nil {
		return nil, err
	}
	if blobName == "" {
		return nil, base.NewModuleError(m.Name(), "GetProperties", "blob name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	blobClient := m.client.ServiceClient().NewContainerClient(containerName).NewBlobClient(blobName)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GetProperties", fmt.Sprintf("failed to get properties of %s", blobName), err)
	}

	info := &BlobInfo{
		Name:         blobName,
		Size:         int64Value(props.ContentLength),
		ContentType:  strValue(props.ContentType),
		LastModified: timeValue(props.LastModified),
		ETag:         strValue((*string)(props.ETag)),
	}
	if len(props.Metadata) > 0 {
		info.Metadata = make(map[string]string, len(props.Metadata))
		for k, v := range props.Metadata {
			info.Metadata[k] = strValue(v)
		}
	}
	return info, nil
}

// DeleteBlob deletes a blob
func (m *AzureBlobModule) DeleteBlob(ctx context.Context, containerName, blobName string) error {
	containerName, err := m.resolveContainer("DeleteBlob", containerName)
	if err != nil {
		return err
	}
	if blobName == "" {
		return base.NewModuleError(m.Name(), "DeleteBlob", "blob name is required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if _, err := m.client.DeleteBlob(ctx, containerName, blobName, nil); err != nil {
		return base.NewModuleError(m.Name(), "DeleteBlob", fmt.Sprintf("failed to delete blob %s", blobName), err)
	}

	m.Logf("Deleted blob: %s/%s", containerName, blobName)
	return nil
}

// Copy starts a server-side copy between blobs. The copy is asynchronous on
// the service side; large blobs may still be copying when this returns.
func (m *AzureBlobModule) Copy(ctx context.Context, srcContainer, srcBlob, dstContainer, dstBlob string) error {
	if err := m.RequireConnected("Copy"); err != nil {
		return err
	}
	if srcContainer == "" {
		srcContainer = m.defaultContainer
	}
	if dstContainer == "" {
		dstContainer = m.defaultContainer
	}
	if srcContainer == "" || dstContainer == "" {
		return base.NewModuleError(m.Name(), "Copy", "container name is required", nil)
	}
	if srcBlob == "" || dstBlob == "" {
		return base.NewModuleError(m.Name(), "Copy", "source and destination blob names are required", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	sourceURL := fmt.Sprintf("%s%s/%s", serviceURL(m.accountName), srcContainer, srcBlob)
	dstClient := m.client.ServiceClient().NewContainerClient(dstContainer).NewBlobClient(dstBlob)
	if _, err := dstClient.StartCopyFromURL(ctx, sourceURL, nil); err != nil {
		return base.NewModuleError(m.Name(), "Copy", "failed to start blob copy", err)
	}

	m.Logf("Copy started: %s/%s -> %s/%s", srcContainer, srcBlob, dstContainer, dstBlob)
	return nil
}

// GenerateSAS mints a signed delegation URL for one blob. Signing is local
// and requires the account_key credential; permissions combine r (read),
// w (write), d (delete), and c (create).
func (m *AzureBlobModule) GenerateSAS(containerName, blobName, permissions string, expiry time.Duration) (*SASInfo, error) {
	containerName, err := m.resolveContainer("GenerateSAS", containerName)
	if err != nil {
		return nil, err
	}
	if blobName == "" {
		return nil, base.NewModuleError(m.Name(), "GenerateSAS", "blob name is required", nil)
	}
	if m.accountName == "" {
		return nil, base.NewModuleError(m.Name(), "GenerateSAS", "account_name option is required for SAS generation", nil)
	}

	accountKey := m.Config().Credential("account_key")
	if accountKey == "" {
		return nil, base.NewModuleError(m.Name(), "GenerateSAS", "account_key credential is required for SAS generation", nil)
	}

	timer := sdk.NewTimer()
	defer timer.RecordTo(m.Metrics().RecordCall, nil)

	if permissions == "" {
		permissions = "r"
	}
	perms, err := parseSASPermissions(permissions)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GenerateSAS", "invalid permissions", err)
	}

	if expiry <= 0 {
		expiry = DefaultSASExpiry
	}
	expiresAt := time.Now().Add(expiry)

	cred, err := azblob.NewSharedKeyCredential(m.accountName, accountKey)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GenerateSAS", "failed to create signing credential", err)
	}

	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     time.Now().Add(-10 * time.Minute), // clock skew allowance
		ExpiryTime:    expiresAt,
		Permissions:   perms.String(),
		ContainerName: containerName,
		BlobName:      blobName,
	}
	queryParams, err := values.SignWithSharedKey(cred)
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "GenerateSAS", "failed to sign SAS token", err)
	}

	return &SASInfo{
		URL:         fmt.Sprintf("%s%s/%s?%s", serviceURL(m.accountName), containerName, blobName, queryParams.Encode()),
		ExpiresAt:   expiresAt,
		Permissions: permissions,
	}, nil
}

func (m *AzureBlobModule) resolveContainer(op, containerName string) (string, error) {
	if err := m.RequireConnected(op); err != nil {
		return "", err
	}
	if containerName != "" {
		return containerName, nil
	}
	if m.defaultContainer != "" {
		return m.defaultContainer, nil
	}
	return "", base.NewModuleError(m.Name(), op, "container name is required (no default_container configured)", nil)
}

func serviceURL(accountName string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
}

func parseSASPermissions(permissions string) (sas.BlobPermissions, error) {
	var perms sas.BlobPermissions
	for _, p := range permissions {
		switch p {
		case 'r':
			perms.Read = true
		case 'w':
			perms.Write = true
		case 'd':
			perms.Delete = true
		case 'c':
			perms.Create = true
		default:
			return sas.BlobPermissions{}, fmt.Errorf("unknown SAS permission %q (use r, w, d, c)", string(p))
		}
	}
	return perms, nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func int64Value(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
