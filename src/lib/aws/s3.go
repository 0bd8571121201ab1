package aws

import (
	"artbook/src/lib"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var ErrNoSuchObject = errors.New("object does not exist")

// S3Download reads the whole object at bucket/key.
func S3Download(ctx context.Context, bucket, key string) ([]byte, error) {
	client, err := lib.AWSGetS3Client()
	if err != nil {
		return nil, err
	}
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNoSuchObject
		}
		return nil, err
	}
	defer result.Body.Close()
	return io.ReadAll(result.Body)
}
