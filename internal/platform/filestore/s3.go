// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// uploadPartSize matches the upload limit so a single image is one PUT.
const uploadPartSize = 5 << 20

// S3Options configures an [S3Store].
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Store keeps files in an S3-compatible bucket (AWS, MinIO, R2).
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// NewS3Store builds a client from options. Static credentials are used when
// given, otherwise the default AWS credential chain applies.
func NewS3Store(context context.Context, options S3Options) (*S3Store, error) {
	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(options.Region),
	}
	if options.AccessKeyID != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(options.AccessKeyID, options.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("filestore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = options.UsePathStyle
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
	})

	return &S3Store{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = uploadPartSize
		}),
		bucket: options.Bucket,
	}, nil
}

// Save uploads body as a private object.
func (store *S3Store) Save(context context.Context, key, contentType string, body io.Reader) error {
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}

	_, err = store.uploader.Upload(context, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(cleaned),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("filestore: s3 upload %q: %w", cleaned, err)
	}
	return nil
}

// Open streams the object body.
func (store *S3Store) Open(context context.Context, key string) (*Object, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	output, err := store.client.GetObject(context, &s3.GetObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("filestore: s3 get %q: %w", cleaned, err)
	}

	contentType := aws.ToString(output.ContentType)
	if contentType == "" {
		contentType = ContentTypeFor(cleaned)
	}

	return &Object{
		Body:        output.Body,
		ContentType: contentType,
		Size:        aws.ToInt64(output.ContentLength),
	}, nil
}

// Delete removes the object. S3 deletes are idempotent, so a HEAD first
// distinguishes a missing object from a successful delete.
func (store *S3Store) Delete(context context.Context, key string) error {
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}

	_, err = store.client.HeadObject(context, &s3.HeadObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		if isS3NotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("filestore: s3 head %q: %w", cleaned, err)
	}

	_, err = store.client.DeleteObject(context, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		return fmt.Errorf("filestore: s3 delete %q: %w", cleaned, err)
	}
	return nil
}

// Ping checks the bucket exists and the credentials can reach it.
func (store *S3Store) Ping(context context.Context) error {
	_, err := store.client.HeadBucket(context, &s3.HeadBucketInput{Bucket: aws.String(store.bucket)})
	if err != nil {
		return fmt.Errorf("filestore: s3 bucket %q unreachable: %w", store.bucket, err)
	}
	return nil
}

// isS3NotFound recognises the different shapes a missing key takes.
func isS3NotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	var responseError interface{ HTTPStatusCode() int }
	if errors.As(err, &responseError) {
		return responseError.HTTPStatusCode() == http.StatusNotFound
	}

	return false
}
