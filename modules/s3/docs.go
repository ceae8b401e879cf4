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

import "nl2flow/platform/modules/base"

// Metadata identifies the S3 module in the catalog
func (m *S3Module) Metadata() base.Metadata {
	return base.NewMetadata(
		"S3",
		"s3",
		"Amazon S3 object storage with uploads, downloads, listing, deletion, and presigned URL generation",
	).WithKeywords(
		"s3", "aws", "amazon", "storage", "object-storage", "bucket",
		"upload", "download", "presigned-url",
	).WithDependencies("github.com/aws/aws-sdk-go-v2/service/s3")
}

// UsageNotes returns operational guidance for generated flows
func (m *S3Module) UsageNotes() []string {
	return []string{
		"Credentials: use IAM roles, environment variables, or explicit access_key_id/secret_access_key credentials",
		"S3-compatible stores (MinIO, LocalStack, DigitalOcean Spaces, Cloudflare R2) are supported via a custom endpoint",
		"A default bucket can be configured; the bucket parameter is then optional on every method",
		"Object keys may contain slashes for directory-like organization (reports/2025/report.pdf)",
		"s3_list_objects returns at most max_keys objects per call (default 1000)",
		"Multipart uploads for large files are handled transparently by the SDK",
		"Presigned URLs default to 3600 seconds of validity and support GET for downloads and PUT for uploads",
		"Object bodies are returned as raw bytes; decode JSON or CSV content in the flow",
		"All methods return an error when the module is not connected",
	}
}

// Methods returns the documented method surface in presentation order
func (m *S3Module) Methods() []base.MethodInfo {
	return []base.MethodInfo{
		{
			Name:        "s3_upload_file",
			Description: "Upload a local file to an S3 bucket",
			Parameters: []base.Parameter{
				{Name: "local_path", Description: "str (required) - Local file path to upload"},
				{Name: "bucket", Description: "str (optional) - Bucket name, defaults to the configured bucket"},
				{Name: "object_key", Description: "str (optional) - Destination key, defaults to the file name"},
			},
			Returns: "map - Bucket, key, and etag of the uploaded object",
			Examples: []base.Example{
				{Text: "Upload file {{data.csv}} to S3 bucket {{my-bucket}}", Code: "s3_upload_file(local_path='{{data.csv}}', bucket='{{my-bucket}}')"},
				{Text: "Upload file {{report.pdf}} to S3 bucket {{my-bucket}} with custom key {{reports/2025/report.pdf}}", Code: "s3_upload_file(local_path='{{report.pdf}}', bucket='{{my-bucket}}', object_key='{{reports/2025/report.pdf}}')"},
			},
		},
		{
			Name:        "s3_download_file",
			Description: "Download an object from an S3 bucket to a local file",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "str (optional) - Bucket name, defaults to the configured bucket"},
				{Name: "object_key", Description: "str (required) - S3 object key to download"},
				{Name: "local_path", Description: "str (required) - Local path to save the file"},
			},
			Returns: "int - Number of bytes written",
			Examples: []base.Example{
				{Text: "Download file {{data.csv}} from S3 bucket {{my-bucket}} to {{local_data.csv}}", Code: "s3_download_file(bucket='{{my-bucket}}', object_key='{{data.csv}}', local_path='{{local_data.csv}}')"},
			},
		},
		{
			Name:        "s3_list_objects",
			Description: "List objects in an S3 bucket, optionally filtered by prefix",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "str (optional) - Bucket name, defaults to the configured bucket"},
				{Name: "prefix", Description: "str (optional) - Filter by key prefix/folder"},
				{Name: "max_keys", Description: "int (optional) - Maximum objects to return (default 1000)"},
			},
			Returns: "list[map] - Object keys, sizes, etags, and last modified dates",
			Examples: []base.Example{
				{Text: "List objects in S3 bucket {{my-bucket}}", Code: "s3_list_objects(bucket='{{my-bucket}}')"},
				{Text: "List objects in S3 bucket {{my-bucket}} with prefix {{reports/2025/}}", Code: "s3_list_objects(bucket='{{my-bucket}}', prefix='{{reports/2025/}}')"},
			},
		},
		{
			Name:        "s3_get_object",
			Description: "Read an object's content directly without writing a local file",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "str (optional) - Bucket name, defaults to the configured bucket"},
				{Name: "object_key", Description: "str (required) - S3 object key to read"},
			},
			Returns: "map - Object content as bytes plus content type, length, and etag",
			Examples: []base.Example{
				{Text: "Read object {{config.json}} from S3 bucket {{settings}}", Code: "s3_get_object(bucket='{{settings}}', object_key='{{config.json}}')"},
			},
		},
		{
			Name:        "s3_put_object",
			Description: "Write content directly to an S3 object",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "str (optional) - Bucket name, defaults to the configured bucket"},
				{Name: "object_key", Description: "str (required) - Destination object key"},
				{Name: "content", Description: "bytes (required) - Content to write"},
				{Name: "content_type", Description: "str (optional) - MIME type (default application/octet-stream)"},
			},
			Returns: "str - ETag of the written object",
			Examples: []base.Example{
				{Text: "Write content {{payload}} to object {{out/result.json}} in bucket {{data}}", Code: "s3_put_object(bucket='{{data}}', object_key='{{out/result.json}}', content={{payload}}, content_type='application/json')"},
			},
		},
		{
			Name:        "s3_delete_object",
			Description: "Delete an object from an S3 bucket",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "str (optional) - Bucket name, defaults to the configured bucket"},
				{Name: "object_key", Description: "str (required) - S3 object key to delete"},
			},
			Returns: "None - Errors when the delete fails",
			Examples: []base.Example{
				{Text: "Delete object {{old_file.csv}} from S3 bucket {{my-bucket}}", Code: "s3_delete_object(bucket='{{my-bucket}}', object_key='{{old_file.csv}}')"},
				{Text: "Delete object {{2023/old-log.txt}} from S3 bucket {{logs}}", Code: "s3_delete_object(bucket='{{logs}}', object_key='{{2023/old-log.txt}}')"},
			},
		},
		{
			Name:        "s3_generate_presigned_url",
			Description: "Generate a presigned URL for time-limited direct object access",
			Parameters: []base.Parameter{
				{Name: "bucket", Description: "str (optional) - Bucket name, defaults to the configured bucket"},
				{Name: "object_key", Description: "str (required) - S3 object key"},
				{Name: "http_method", Description: "str (optional) - GET for download or PUT for upload (default GET)"},
				{Name: "expiration", Description: "int (optional) - URL validity in seconds (default 3600)"},
			},
			Returns: "str - Presigned URL",
			Examples: []base.Example{
				{Text: "Generate presigned URL for object {{file.pdf}} in bucket {{docs}} with {{3600}} seconds expiration", Code: "s3_generate_presigned_url(bucket='{{docs}}', object_key='{{file.pdf}}', expiration={{3600}})"},
				{Text: "Generate presigned URL for uploading {{new_file.csv}} to bucket {{uploads}} using method {{PUT}}", Code: "s3_generate_presigned_url(bucket='{{uploads}}', object_key='{{new_file.csv}}', http_method='PUT')"},
			},
		},
	}
}
