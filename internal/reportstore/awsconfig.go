package reportstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var roleARNRe = regexp.MustCompile(`^arn:aws:iam::\d{12}:role/.+$`)

// ValidateRoleARN checks that arn looks like an IAM role ARN.
func ValidateRoleARN(arn string) error {
	if !roleARNRe.MatchString(arn) {
		return fmt.Errorf("invalid IAM role ARN: %q", arn)
	}
	return nil
}

// Settings selects the bucket and the credentials used to write to it.
type Settings struct {
	Bucket string
	Prefix string
	Region string
	// Profile is an optional shared-config profile.
	Profile string
	// RoleARN, when set, is assumed through STS before uploading.
	RoleARN string
}

// loadAWSConfig resolves the default credential chain, then layers the
// optional profile and assumed role on top.
func loadAWSConfig(ctx context.Context, s Settings) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.Region),
	}
	if s.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(s.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("reportstore: load aws config: %w", err)
	}

	if s.RoleARN != "" {
		if err := ValidateRoleARN(s.RoleARN); err != nil {
			return aws.Config{}, fmt.Errorf("reportstore: %w", err)
		}
		cfg.Credentials = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), s.RoleARN))
	}
	return cfg, nil
}
