// Package cli implements the export, import and migrate commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
	"github.com/kontent-tools/kontent-migrate/pkg/migrate"
	"github.com/kontent-tools/kontent-migrate/pkg/snapshot"
)

var configLog = logger.New("cli:config")

// EnvironmentArgs identifies one environment and how to reach it.
type EnvironmentArgs struct {
	EnvironmentID string `yaml:"environment_id"`
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
}

func (a EnvironmentArgs) validate(role string) error {
	if a.EnvironmentID == "" {
		return fmt.Errorf("missing %s environment id", role)
	}
	if a.APIKey == "" {
		return fmt.Errorf("missing %s api key", role)
	}
	return nil
}

func (a EnvironmentArgs) client() *kontent.Client {
	var opts []kontent.Option
	if a.BaseURL != "" {
		opts = append(opts, kontent.WithBaseURL(a.BaseURL))
	}
	return kontent.NewClient(a.EnvironmentID, a.APIKey, opts...)
}

// ExportArgs are the arguments of the export command.
type ExportArgs struct {
	Source      EnvironmentArgs
	Items       string
	Language    string
	ItemsFile   string
	AssetsFile  string
	FailOnError bool
}

func (a *ExportArgs) validate() error {
	if err := a.Source.validate("source"); err != nil {
		return err
	}
	if strings.TrimSpace(a.Items) == "" {
		return fmt.Errorf("missing item codenames (--items)")
	}
	if a.Language == "" {
		return fmt.Errorf("missing language codename (--language)")
	}
	if a.ItemsFile == "" {
		a.ItemsFile = snapshot.DefaultItemsFilename
	}
	if a.AssetsFile == "" {
		a.AssetsFile = snapshot.DefaultAssetsFilename
	}
	return nil
}

// requests expands the CSV item list into export requests.
func (a *ExportArgs) requests() []migrate.ExportRequest {
	var requests []migrate.ExportRequest
	for _, codename := range strings.Split(a.Items, ",") {
		codename = strings.TrimSpace(codename)
		if codename == "" {
			continue
		}
		requests = append(requests, migrate.ExportRequest{
			ItemCodename:     codename,
			LanguageCodename: a.Language,
		})
	}
	return requests
}

// ImportArgs are the arguments of the import command.
type ImportArgs struct {
	Target      EnvironmentArgs
	ItemsFile   string
	AssetsFile  string
	Force       bool
	FailOnError bool
}

func (a *ImportArgs) validate() error {
	if err := a.Target.validate("target"); err != nil {
		return err
	}
	if a.ItemsFile == "" {
		a.ItemsFile = snapshot.DefaultItemsFilename
	}
	if a.AssetsFile == "" {
		a.AssetsFile = snapshot.DefaultAssetsFilename
	}
	return nil
}

// MigrateArgs are the arguments of the migrate command: an export and
// an import glued together without touching disk.
type MigrateArgs struct {
	Source      EnvironmentArgs `yaml:"source"`
	Target      EnvironmentArgs `yaml:"target"`
	Items       string          `yaml:"items"`
	Language    string          `yaml:"language"`
	Force       bool            `yaml:"force"`
	FailOnError bool            `yaml:"fail_on_error"`
}

func (a *MigrateArgs) validate() error {
	if err := a.Source.validate("source"); err != nil {
		return err
	}
	if err := a.Target.validate("target"); err != nil {
		return err
	}
	if strings.TrimSpace(a.Items) == "" {
		return fmt.Errorf("missing item codenames (--items)")
	}
	if a.Language == "" {
		return fmt.Errorf("missing language codename (--language)")
	}
	return nil
}

// ApplyConfigFile overlays a YAML run config under the current args.
// Explicit flags win over file values.
func (a *MigrateArgs) ApplyConfigFile(filename string) error {
	configLog.Printf("Loading run config from %s", filename)
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fromFile MigrateArgs
	if err := yaml.Unmarshal(content, &fromFile); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	merge := func(flag, file string) string {
		if flag != "" {
			return flag
		}
		return file
	}
	a.Source.EnvironmentID = merge(a.Source.EnvironmentID, fromFile.Source.EnvironmentID)
	a.Source.APIKey = merge(a.Source.APIKey, fromFile.Source.APIKey)
	a.Source.BaseURL = merge(a.Source.BaseURL, fromFile.Source.BaseURL)
	a.Target.EnvironmentID = merge(a.Target.EnvironmentID, fromFile.Target.EnvironmentID)
	a.Target.APIKey = merge(a.Target.APIKey, fromFile.Target.APIKey)
	a.Target.BaseURL = merge(a.Target.BaseURL, fromFile.Target.BaseURL)
	a.Items = merge(a.Items, fromFile.Items)
	a.Language = merge(a.Language, fromFile.Language)
	a.Force = a.Force || fromFile.Force
	a.FailOnError = a.FailOnError || fromFile.FailOnError
	return nil
}
