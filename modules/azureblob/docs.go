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

import "nl2flow/platform/modules/base"

// Metadata describes the Azure Blob module for catalog listings
func (m *AzureBlobModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"Azure Blob Storage",
		"azureblob",
		"Azure Blob Storage with container management, blob upload and download, server-side copy, and SAS URL generation",
	).WithKeywords(
		"azure", "blob", "storage", "containers", "object-storage",
		"sas", "cloud", "managed-identity", "upload", "download",
	).WithDependencies(
		"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob",
		"github.com/Azure/azure-sdk-for-go/sdk/azidentity",
	)
}

// UsageNotes returns operational guidance for generated flows
func (m *AzureBlobModule) UsageNotes() []string {
	return []string{
		"Authenticate with one of: the connection_string credential, the account_key credential plus the account_name option, or the use_managed_identity option (DefaultAzureCredential).",
		"Set default_container to omit the container argument on blob operations.",
		"Container names must be lowercase, 3-63 characters, letters, numbers, and hyphens.",
		"Blob names can contain slashes to emulate directories, e.g. 'reports/2025/q1.pdf'.",
		"azureblob_upload overwrites an existing blob with the same name.",
		"Use the prefix argument of azureblob_list_blobs to list one virtual directory.",
		"azureblob_get_properties returns size, content type, and metadata without downloading content.",
		"azureblob_copy is a server-side operation; content never transits the caller. Large copies complete asynchronously.",
		"SAS generation signs locally and needs the account_key credential even when connected through managed identity.",
		"SAS permissions combine r (read), w (write), d (delete), and c (create); expiry defaults to one hour.",
		"Deleting a container removes every blob in it.",
	}
}

// Methods lists callable operations with examples
func (m *AzureBlobModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "azureblob_list_containers",
			Description: "List all containers in the storage account",
			Parameters:  []base.Parameter{},
			Returns:     "Container names with last-modified timestamps",
			Examples: []base.Example{
				{
					Text: "Query: list all storage containers",
					Code: "azureblob_list_containers()",
				},
			},
		},
		{
			Name:        "azureblob_create_container",
			Description: "Create a container",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name (lowercase letters, numbers, hyphens)"},
			},
			Returns: "Error if the container could not be created",
			Examples: []base.Example{
				{
					Text: "Create a backups container",
					Code: "azureblob_create_container(container='backups')",
				},
			},
		},
		{
			Name:        "azureblob_delete_container",
			Description: "Delete a container and every blob in it",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name"},
			},
			Returns: "Error if the container could not be deleted",
			Examples: []base.Example{
				{
					Text: "Remove the old staging container",
					Code: "azureblob_delete_container(container='staging-old')",
				},
			},
		},
		{
			Name:        "azureblob_list_blobs",
			Description: "List blobs in a container, optionally filtered by prefix",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name (default_container when omitted)"},
				{Name: "prefix", Description: "Only list blobs whose names start with this prefix"},
				{Name: "max_results", Description: "Page size cap (default 1000)"},
			},
			Returns: "Blob names with size, content type, last-modified, and ETag",
			Examples: []base.Example{
				{
					Text: "Query: list files under reports/2025/",
					Code: "azureblob_list_blobs(container='documents', prefix='reports/2025/')",
				},
			},
		},
		{
			Name:        "azureblob_upload",
			Description: "Upload content to a blob, overwriting any existing blob",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name (default_container when omitted)"},
				{Name: "blob", Description: "Blob name"},
				{Name: "content", Description: "Blob content"},
				{Name: "content_type", Description: "MIME type (default application/octet-stream)"},
			},
			Returns: "Error if the upload failed",
			Examples: []base.Example{
				{
					Text: "Upload a report",
					Code: "azureblob_upload(container='documents', blob='reports/{{name}}.csv', content={{data}}, content_type='text/csv')",
				},
			},
		},
		{
			Name:        "azureblob_download",
			Description: "Download a blob's full content",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name (default_container when omitted)"},
				{Name: "blob", Description: "Blob name"},
			},
			Returns: "Blob content",
			Examples: []base.Example{
				{
					Text: "Query: fetch the latest export",
					Code: "azureblob_download(container='exports', blob='{{name}}')",
				},
			},
		},
		{
			Name:        "azureblob_get_properties",
			Description: "Fetch blob metadata without downloading content",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name (default_container when omitted)"},
				{Name: "blob", Description: "Blob name"},
			},
			Returns: "Size, content type, last-modified, ETag, and custom metadata",
			Examples: []base.Example{
				{
					Text: "Query: how large is the nightly backup",
					Code: "azureblob_get_properties(container='backups', blob='nightly.tar.gz')",
				},
			},
		},
		{
			Name:        "azureblob_delete",
			Description: "Delete a blob",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name (default_container when omitted)"},
				{Name: "blob", Description: "Blob name"},
			},
			Returns: "Error if the blob could not be deleted",
			Examples: []base.Example{
				{
					Text: "Delete a stale export",
					Code: "azureblob_delete(container='exports', blob='{{name}}')",
				},
			},
		},
		{
			Name:        "azureblob_copy",
			Description: "Start a server-side copy between blobs",
			Parameters: []base.Parameter{
				{Name: "source_container", Description: "Source container (default_container when omitted)"},
				{Name: "source_blob", Description: "Source blob name"},
				{Name: "dest_container", Description: "Destination container (default_container when omitted)"},
				{Name: "dest_blob", Description: "Destination blob name"},
			},
			Returns: "Error if the copy could not be started",
			Examples: []base.Example{
				{
					Text: "Archive a report",
					Code: "azureblob_copy(source_container='documents', source_blob='report.pdf', dest_container='archive', dest_blob='2025/report.pdf')",
				},
			},
		},
		{
			Name:        "azureblob_generate_sas",
			Description: "Generate a signed delegation URL for one blob",
			Parameters: []base.Parameter{
				{Name: "container", Description: "Container name (default_container when omitted)"},
				{Name: "blob", Description: "Blob name"},
				{Name: "permissions", Description: "Permission letters: r, w, d, c (default r)"},
				{Name: "expiry", Description: "URL lifetime (default one hour)"},
			},
			Returns: "Signed URL with its expiry time",
			Examples: []base.Example{
				{
					Text: "Share a report for download",
					Code: "azureblob_generate_sas(container='documents', blob='report.pdf', permissions='r', expiry=86400)",
				},
			},
		},
	}
}
