package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/isora-dev/isora/internal/config"
	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/assets"
)

func assetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage static assets",
	}
	cmd.AddCommand(publishCmd())
	return cmd
}

func publishCmd() *cobra.Command {
	var (
		bucket string
		prefix string
		region string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the asset directory to S3",
		Long: `Upload every file under the asset directory to an S3 bucket.

Objects are keyed by their path relative to the directory, prefixed
with --prefix, and uploaded with an immutable Cache-Control header.
Credentials come from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY
(a .env file in the working directory is honored).

Examples:
  isora assets publish --bucket=my-site-assets
  isora assets publish --bucket=my-site-assets --prefix=v2 --region=eu-west-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(bucket, prefix, region, dir)
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Target S3 bucket (required)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")
	cmd.Flags().StringVar(&region, "region", "us-east-1", "AWS region")
	cmd.Flags().StringVar(&dir, "dir", "", "Asset directory (default from isora.yaml)")
	cmd.MarkFlagRequired("bucket")

	return cmd
}

func runPublish(bucket, prefix, region, dir string) error {
	godotenv.Load()

	if dir == "" {
		cfg, err := config.Load(".")
		if err != nil {
			return ierrors.Newf(ierrors.CategoryCLI, "load config").Wrap(err)
		}
		dir = cfg.Assets.Dir
	}
	if _, err := os.Stat(dir); err != nil {
		return ierrors.New("I801").Wrap(err)
	}

	client := s3.New(s3.Options{
		Region:      region,
		Credentials: envCredentials(),
	})
	pub := assets.NewPublisher(client, bucket, assets.WithPrefix(prefix))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := pub.PublishDir(ctx, dir)
	if err != nil {
		return err
	}

	success("published %d files to s3://%s/%s in %s",
		n, bucket, prefix, time.Since(start).Round(time.Millisecond))
	return nil
}

// envCredentials reads static credentials from the environment. The CLI
// does not pull in the full AWS config loader; the env variables cover
// the CI and local cases asset publishing runs in.
func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, ierrors.Newf(ierrors.CategoryCLI,
				"AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "isora-env",
		}, nil
	})
}
