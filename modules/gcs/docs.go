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

import "nl2flow/platform/modules/base"

// Metadata describes the GCS module for catalog listings
func (m *GCSModule) Metadata() base.Metadata {
	return base.NewMetadata(
		"Google Cloud Storage",
		"gcs",
		"Google Cloud Storage with bucket management, object upload and download, server-side copy, and V4 signed URL generation",
	).WithKeywords(
		"gcp", "gcs", "google", "storage", "buckets",
		"object-storage", "signed-url", "cloud", "upload", "download",
	).WithDependencies(
		"cloud.google.com/go/storage",
		"google.golang.org/api",
	)
}

// UsageNotes returns operational guidance for generated flows
func (m *GCSModule) UsageNotes() []string {
	return []string{
		"Authenticate with the credentials_file credential (service account key path), the credentials_json credential (inline key), or Application Default Credentials when neither is set.",
		"Set project_id to list and create buckets; object operations work without it.",
		"Set default_bucket to omit the bucket argument on object operations.",
		"Bucket names are globally unique, lowercase, 3-63 characters.",
		"Object names can contain slashes to emulate directories, e.g. 'exports/2025/jan.csv'.",
		"gcs_upload overwrites an existing object with the same name.",
		"Use the prefix argument of gcs_list_objects to list one virtual directory.",
		"gcs_get_metadata returns size, content type, and generation without downloading content.",
		"gcs_copy is a server-side operation; content never transits the caller.",
		"gcs_delete_bucket fails on a non-empty bucket unless force is set, which deletes every object first.",
		"Signed URLs use the V4 scheme and require service account credentials with a private key; expiry defaults to 15 minutes, maximum 7 days.",
		"Set the endpoint option to target a local emulator such as fake-gcs-server.",
	}
}

// Methods lists callable operations with examples
func (m *GCSModule) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "gcs_list_buckets",
			Description: "List all buckets in the configured project",
			Parameters:  []base.Parameter{},
			Returns:     "Bucket names with location, storage class, and creation time",
			Examples: []base.Example{
				{
					Text: "Query: list all storage buckets",
					Code: "gcs_list_buckets()",
				},
			},
		},
		{
			Name:        "gcs_create_bucket",
			Description: "Create a bucket in the configured project",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Globally unique bucket name"},
				{Name: "location", Description: "Bucket location, e.g. US or EUROPE-WEST1 (service default when omitted)"},
				{Name: "storage_class", Description: "STANDARD, NEARLINE, COLDLINE, or ARCHIVE (service default when omitted)"},
			},
			Returns: "Error if the bucket could not be created",
			Examples: []base.Example{
				{
					Text: "Create bucket {{acme-backups}} in {{EUROPE-WEST1}}",
					Code: "gcs_create_bucket(bucket='{{acme-backups}}', location='{{EUROPE-WEST1}}')",
				},
			},
		},
		{
			Name:        "gcs_delete_bucket",
			Description: "Delete a bucket, optionally deleting its objects first",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Bucket name"},
				{Name: "force", Description: "Delete every object in the bucket first (default false)"},
			},
			Returns: "Error if the bucket could not be deleted",
			Examples: []base.Example{
				{
					Text: "Delete bucket {{staging-old}} and everything in it",
					Code: "gcs_delete_bucket(bucket='{{staging-old}}', force=True)",
				},
			},
		},
		{
			Name:        "gcs_list_objects",
			Description: "List objects in a bucket, optionally filtered by prefix",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Bucket name (default_bucket when omitted)"},
				{Name: "prefix", Description: "Only list objects whose names start with this prefix"},
				{Name: "max_results", Description: "Result cap (default 1000)"},
			},
			Returns: "Object names with size, content type, and last-updated time",
			Examples: []base.Example{
				{
					Text: "Query: list files under {{exports/2025/}}",
					Code: "gcs_list_objects(bucket='{{data-lake}}', prefix='{{exports/2025/}}')",
				},
			},
		},
		{
			Name:        "gcs_upload",
			Description: "Upload content to an object, overwriting any existing object",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Bucket name (default_bucket when omitted)"},
				{Name: "object", Description: "Object name"},
				{Name: "content", Description: "Object content"},
				{Name: "content_type", Description: "MIME type (default application/octet-stream)"},
			},
			Returns: "Error if the upload failed",
			Examples: []base.Example{
				{
					Text: "Upload report to {{reports/q1.pdf}}",
					Code: "gcs_upload(object='{{reports/q1.pdf}}', content=report, content_type='application/pdf')",
				},
			},
		},
		{
			Name:        "gcs_download",
			Description: "Download an object's full content",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Bucket name (default_bucket when omitted)"},
				{Name: "object", Description: "Object name"},
			},
			Returns: "The object content",
			Examples: []base.Example{
				{
					Text: "Download {{config/settings.yaml}}",
					Code: "gcs_download(object='{{config/settings.yaml}}')",
				},
			},
		},
		{
			Name:        "gcs_get_metadata",
			Description: "Fetch object attributes without downloading content",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Bucket name (default_bucket when omitted)"},
				{Name: "object", Description: "Object name"},
			},
			Returns: "Size, content type, generation, storage class, and custom metadata",
			Examples: []base.Example{
				{
					Text: "Query: how big is {{backups/db.dump}}",
					Code: "gcs_get_metadata(object='{{backups/db.dump}}')",
				},
			},
		},
		{
			Name:        "gcs_delete",
			Description: "Delete an object",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Bucket name (default_bucket when omitted)"},
				{Name: "object", Description: "Object name"},
			},
			Returns: "Error if the object could not be deleted",
			Examples: []base.Example{
				{
					Text: "Delete {{tmp/scratch.bin}}",
					Code: "gcs_delete(object='{{tmp/scratch.bin}}')",
				},
			},
		},
		{
			Name:        "gcs_copy",
			Description: "Copy an object server-side, within or across buckets",
			Parameters: []base.Parameter{
				{Name: "source_bucket", Description: "Source bucket (default_bucket when omitted)"},
				{Name: "source_object", Description: "Source object name"},
				{Name: "dest_bucket", Description: "Destination bucket (default_bucket when omitted)"},
				{Name: "dest_object", Description: "Destination object name"},
			},
			Returns: "Error if the copy failed",
			Examples: []base.Example{
				{
					Text: "Copy {{raw/data.csv}} to {{archive/data.csv}}",
					Code: "gcs_copy(source_object='{{raw/data.csv}}', dest_object='{{archive/data.csv}}')",
				},
			},
		},
		{
			Name:        "gcs_signed_url",
			Description: "Generate a V4 signed URL granting time-limited access to an object",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "Bucket name (default_bucket when omitted)"},
				{Name: "object", Description: "Object name"},
				{Name: "method", Description: "HTTP method the URL permits: GET, PUT, DELETE, or HEAD (default GET)"},
				{Name: "expiry_seconds", Description: "URL lifetime in seconds (default 900, maximum 7 days)"},
			},
			Returns: "The signed URL with its expiry time",
			Examples: []base.Example{
				{
					Text: "Share {{reports/q1.pdf}} for one hour",
					Code: "gcs_signed_url(object='{{reports/q1.pdf}}', expiry_seconds={{3600}})",
				},
			},
		},
	}
}
