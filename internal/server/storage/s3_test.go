package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() S3Config {
	return S3Config{
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		BaseEndpoint: "http://127.0.0.1:9000",
		Bucket:       "notes",
	}
}

func restoreSeams(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet, origDel := presignPutObject, presignGetObject, deleteObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
		deleteObject = origDel
	})
}

func TestNewS3Store_AppliesOptions(t *testing.T) {
	restoreSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, DefaultPresignExpiry, st.expiry)
}

func TestNewS3Store_Errors(t *testing.T) {
	restoreSeams(t)

	cfg := testConfig()
	cfg.Bucket = ""
	_, err := NewS3Store(context.Background(), cfg)
	require.Error(t, err)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Store(context.Background(), testConfig())
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("expected load-fail, got %v", err)
	}
}

func TestPresign_RealSigner(t *testing.T) {
	restoreSeams(t)

	cfg := testConfig()
	cfg.PresignExpiry = 5 * time.Minute
	st, err := NewS3Store(context.Background(), cfg)
	require.NoError(t, err)

	for name, fn := range map[string]func(context.Context, string) (string, error){
		"put": st.PresignPut,
		"get": st.PresignGet,
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := fn(context.Background(), "users/1/notes/2/abc")
			require.NoError(t, err)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "127.0.0.1:9000", u.Host)
			assert.True(t, strings.HasPrefix(u.Path, "/notes/users/1/notes/2/abc"), u.Path)
			assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
			assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
		})
	}
}

func TestPresign_Errors(t *testing.T) {
	restoreSeams(t)

	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-get-fail")
	}

	_, err = st.PresignPut(context.Background(), "k")
	assert.EqualError(t, err, "presign-put-fail")
	_, err = st.PresignGet(context.Background(), "k")
	assert.EqualError(t, err, "presign-get-fail")
}

func TestDelete(t *testing.T) {
	restoreSeams(t)

	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)

	var gotKey string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		gotKey = aws.ToString(in.Key)
		assert.Equal(t, "notes", aws.ToString(in.Bucket))
		return &s3.DeleteObjectOutput{}, nil
	}
	require.NoError(t, st.Delete(context.Background(), "k1"))
	assert.Equal(t, "k1", gotKey)

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return nil, errors.New("denied")
	}
	err = st.Delete(context.Background(), "k2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
