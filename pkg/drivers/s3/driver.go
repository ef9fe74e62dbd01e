// Package s3 implements the driver that fetches a data file from an
// S3-compatible object store and re-dispatches it to the driver for the
// downloaded file type.
//
// The URL names the bucket and region through the host:
// s3://[key:secret@]bucket.region.host[:port]/path/to/object. Options:
// session_token, scheme (http/https; default follows the port) and
// force_path_style for stores that do not speak virtual-hosted addressing.
package s3

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/leapstack-labs/rsql/internal/fetch"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver opens s3:// connections.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

func (d *Driver) Identifier() string { return "s3" }

func (d *Driver) Connect(ctx context.Context, rawURL string) (driver.Connection, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, driver.InvalidURLErrorf("%s", err)
	}
	query := parsed.Query()

	bucket, region, host, err := splitHost(parsed.Hostname())
	if err != nil {
		return nil, err
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return nil, driver.IOErrorf("no object key in s3 url: %s", rawURL)
	}

	var options []func(*config.LoadOptions) error
	options = append(options, config.WithRegion(region))
	if user := parsed.User.Username(); user != "" {
		secret, _ := parsed.User.Password()
		options = append(options, config.WithCredentialsProvider(aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(user, secret, query.Get("session_token")))))
	}
	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, driver.IOError(err)
	}

	port := parsed.Port()
	if port == "" {
		port = "443"
	}
	scheme := query.Get("scheme")
	if scheme == "" {
		if port == "80" {
			scheme = "http"
		} else {
			scheme = "https"
		}
	}
	endpoint := fmt.Sprintf("%s://%s:%s", scheme, host, port)

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = driver.BoolOption(query, "force_path_style", false)
	})

	object, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, driver.IOError(err)
	}
	defer func() { _ = object.Body.Close() }()

	dir, err := fetch.TempDir()
	if err != nil {
		return nil, err
	}
	path, err := fetch.Save(dir, fetch.FileName(parsed), object.Body)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	conn, err := fetch.Dispatch(ctx, path, aws.ToString(object.ContentType), rawURL)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return fetch.WithCleanup(conn, func() { _ = os.RemoveAll(dir) }), nil
}

func (d *Driver) SupportsFileType(driver.FileType) bool { return false }

// splitHost decomposes bucket.region.host into its three parts.
func splitHost(hostname string) (bucket, region, host string, err error) {
	bucket, rest, found := strings.Cut(hostname, ".")
	if !found {
		return "", "", "", driver.IOErrorf("unable to determine bucket from host: %s", hostname)
	}
	region, host, found = strings.Cut(rest, ".")
	if !found {
		return "", "", "", driver.IOErrorf("unable to determine region from host: %s", hostname)
	}
	return bucket, region, host, nil
}
