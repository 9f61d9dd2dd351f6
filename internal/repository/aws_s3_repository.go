package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/raywall/wanwu/internal/client"
)

// ArtifactRepository guarda os pacotes de deploy num bucket S3.
type ArtifactRepository struct {
	Client *client.AWSClient
}

// ArtifactKey é a chave do objeto de um pacote: um objeto por função e digest.
func ArtifactKey(functionName, hexDigest string) string {
	return fmt.Sprintf("%s/%s.zip", functionName, hexDigest)
}

// Upload grava os bytes do pacote em bucket/key.
func (r *ArtifactRepository) Upload(ctx context.Context, bucket, key string, body []byte) error {
	_, err := r.Client.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("PutObject s3://%s/%s failed: %w", bucket, key, err)
	}
	return nil
}

// Delete remove bucket/key.
func (r *ArtifactRepository) Delete(ctx context.Context, bucket, key string) error {
	_, err := r.Client.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("DeleteObject s3://%s/%s failed: %w", bucket, key, err)
	}
	return nil
}
