package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/urfave/cli/v3"
	"gopkg.in/ini.v1"

	"github.com/iasql/cli/internal/app"
	"github.com/iasql/cli/internal/ui"
)

// awsRegions are the EC2 regions that do not require opt-in.
var awsRegions = []string{
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-northeast-3",
	"ap-south-1",
	"ap-southeast-1",
	"ap-southeast-2",
	"ca-central-1",
	"eu-central-1",
	"eu-north-1",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"sa-east-1",
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
}

const defaultAWSRegion = "us-east-2"

func awsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region to manage",
			Sources: cli.EnvVars("AWS_REGION"),
		},
		&cli.StringFlag{
			Name:    "aws-access-key-id",
			Usage:   "AWS access key id",
			Sources: cli.EnvVars("AWS_ACCESS_KEY_ID"),
		},
		&cli.StringFlag{
			Name:    "aws-secret-access-key",
			Usage:   "AWS secret access key",
			Sources: cli.EnvVars("AWS_SECRET_ACCESS_KEY"),
		},
	}
}

type awsAccount struct {
	region          string
	accessKeyID     string
	secretAccessKey string
}

// awsCredentials takes region and keys from flags or the AWS_* environment.
// Missing keys come from a named profile of the AWS CLI credentials file, or
// are asked for when there is none.
func awsCredentials(cmd *cli.Command, a *app.App, nonInteractive bool) (*awsAccount, error) {
	acct := &awsAccount{
		region:          cmd.String("aws-region"),
		accessKeyID:     cmd.String("aws-access-key-id"),
		secretAccessKey: cmd.String("aws-secret-access-key"),
	}

	if acct.accessKeyID == "" || acct.secretAccessKey == "" {
		if nonInteractive {
			return nil, errors.New("AWS credentials must be set in AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY in non-interactive mode")
		}
		if err := awsKeys(a, acct); err != nil {
			return nil, err
		}
	}

	if acct.region == "" {
		if nonInteractive {
			return nil, errors.New("AWS region must be set in AWS_REGION in non-interactive mode")
		}
		i, err := a.Prompter.Select("Pick AWS region to manage", awsRegions, slices.Index(awsRegions, defaultAWSRegion))
		if err != nil {
			return nil, fmt.Errorf("selecting AWS region: %w", err)
		}
		acct.region = awsRegions[i]
	}

	return acct, nil
}

type awsProfile struct {
	name            string
	accessKeyID     string
	secretAccessKey string
}

func awsKeys(a *app.App, acct *awsAccount) error {
	path := awsCredentialsFile()
	profiles, err := loadAWSProfiles(path)
	if err != nil {
		return err
	}

	switch len(profiles) {
	case 0:
		var err error
		if acct.accessKeyID == "" {
			if acct.accessKeyID, err = a.Prompter.Input("AWS Access Key ID", false); err != nil {
				return fmt.Errorf("reading AWS access key id: %w", err)
			}
		}
		if acct.secretAccessKey == "" {
			if acct.secretAccessKey, err = a.Prompter.Secret("AWS Secret Access Key"); err != nil {
				return fmt.Errorf("reading AWS secret access key: %w", err)
			}
		}
		return nil
	case 1:
		ui.Success(a.Out, ui.Bold("AWS CLI credentials found"), profiles[0].name)
		acct.accessKeyID, acct.secretAccessKey = profiles[0].accessKeyID, profiles[0].secretAccessKey
		return nil
	}

	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.name)
	}
	i, err := a.Prompter.Select("AWS CLI credentials found. Pick named profile", names, 0)
	if err != nil {
		return fmt.Errorf("selecting AWS profile: %w", err)
	}
	acct.accessKeyID, acct.secretAccessKey = profiles[i].accessKeyID, profiles[i].secretAccessKey
	return nil
}

// awsCredentialsFile returns AWS_SHARED_CREDENTIALS_FILE, or ~/.aws/credentials.
func awsCredentialsFile() string {
	if path := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws", "credentials")
}

// loadAWSProfiles reads the profiles holding both keys, in file order. A
// missing file yields no profiles.
func loadAWSProfiles(path string) ([]awsProfile, error) {
	if path == "" {
		return nil, nil
	}
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true}, path)
	if err != nil {
		return nil, fmt.Errorf("reading AWS credentials file %s: %w", path, err)
	}

	var profiles []awsProfile
	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		p := awsProfile{
			name:            section.Name(),
			accessKeyID:     section.Key("aws_access_key_id").String(),
			secretAccessKey: section.Key("aws_secret_access_key").String(),
		}
		if p.accessKeyID == "" || p.secretAccessKey == "" {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
