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

// Package main is the nlcatalog operator utility. It wires the builtin
// module catalog into a registry the way an embedding application would,
// then inspects it: listing the scan outcome, rendering one module's
// prompt context, or interpreting a one-line instruction.
//
// Usage:
//
//	nlcatalog -list
//	nlcatalog -config modules.yaml -list
//	nlcatalog -config modules.yaml -task s3
//	nlcatalog -config modules.yaml -interpret "upload report.pdf to bucket invoices"
//	nlcatalog -env orders:mysql,cache:redis -list
//
// Without -config or -env the catalog runs documentation-only: every
// builtin describes itself, none can connect. Configs whose
// credentials_secret option is set have their credentials resolved
// through AWS Secrets Manager before registration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"nl2flow/platform/interpreter"
	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/catalog"
	"nl2flow/platform/modules/config"
	"nl2flow/platform/modules/prompt"
	"nl2flow/platform/modules/registry"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to the module configuration YAML file")
		envModules    = flag.String("env", "", "comma-separated name:task_type pairs configured via NLF_<NAME>_* environment variables")
		listModules   = flag.Bool("list", false, "list registered modules and their scan outcome")
		taskType      = flag.String("task", "", "render the prompt context for one task type")
		interpretText = flag.String("interpret", "", "interpret a one-line natural language instruction")
	)
	flag.Parse()

	if !*listModules && *taskType == "" && *interpretText == "" {
		flag.Usage()
		os.Exit(2)
	}

	reg, err := buildRegistry(*configPath, *envModules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nlcatalog: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *listModules:
		runList(reg)
	case *taskType != "":
		runTask(reg, *taskType)
	case *interpretText != "":
		runInterpret(reg, *interpretText)
	}
}

// buildRegistry registers the builtin catalog, configured from the YAML
// file and/or NLF_* environment variables when given and
// documentation-only otherwise
func buildRegistry(configPath, envSpec string) (*registry.Registry, error) {
	opts := catalog.Options{DescribeUnconfigured: configPath == "" && envSpec == ""}

	if configPath != "" {
		loader, err := config.NewYAMLLoader(configPath)
		if err != nil {
			return nil, err
		}
		configs, err := loader.Modules()
		if err != nil {
			return nil, err
		}
		opts.Configs = configs
	}

	if envSpec != "" {
		configs, err := loadEnvConfigs(envSpec)
		if err != nil {
			return nil, err
		}
		opts.Configs = append(opts.Configs, configs...)
	}

	if err := resolveSecrets(context.Background(), opts.Configs); err != nil {
		return nil, err
	}

	reg := registry.New()
	if err := catalog.Register(reg, opts); err != nil {
		return nil, err
	}
	return reg, nil
}

// loadEnvConfigs builds module configs from NLF_<NAME>_* environment
// variables for a comma-separated list of name:task_type pairs
func loadEnvConfigs(spec string) ([]*base.ModuleConfig, error) {
	var configs []*base.ModuleConfig
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, taskType, ok := strings.Cut(pair, ":")
		if !ok || name == "" || taskType == "" {
			return nil, fmt.Errorf("invalid -env entry %q: want name:task_type", pair)
		}

		var (
			cfg *base.ModuleConfig
			err error
		)
		switch taskType {
		case "postgres":
			cfg, err = config.LoadPostgresConfig(name)
		case "scylladb":
			cfg, err = config.LoadScyllaConfig(name)
		case "s3":
			cfg, err = config.LoadS3Config(name)
		default:
			cfg, err = config.LoadFromEnv(name, taskType)
		}
		if err != nil {
			return nil, err
		}
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// newSecretsManager builds the production secrets backend. Swapped in tests.
var newSecretsManager = func(ctx context.Context) (config.SecretsManager, error) {
	return config.NewAWSSecretsManager(ctx, config.AWSSecretsManagerOptions{
		Logger: secretsLogger(),
	})
}

// resolveSecrets fills in credentials for configs that reference a managed
// secret. The backend is only constructed when a reference exists, so
// catalogs without credentials_secret never touch AWS.
func resolveSecrets(ctx context.Context, configs []*base.ModuleConfig) error {
	referenced := ""
	for _, cfg := range configs {
		if cfg.StringOption("credentials_secret", "") != "" {
			referenced = cfg.Name
			break
		}
	}
	if referenced == "" {
		return nil
	}

	sm, err := newSecretsManager(ctx)
	if err != nil {
		return fmt.Errorf("module %s sets credentials_secret but the secrets manager is unavailable: %w", referenced, err)
	}
	config.ResolveCredentials(ctx, sm, configs, secretsLogger())
	return nil
}

func secretsLogger() *log.Logger {
	return log.New(os.Stderr, "[NLF_SECRETS] ", log.LstdFlags)
}

func runList(reg *registry.Registry) {
	docs, report := reg.Scan()

	fmt.Printf("Scanned %d modules: %d available, %d skipped (scan %s)\n\n",
		len(report.Results), len(docs), len(report.Failed()), report.ScanID)

	for _, res := range report.Results {
		if res.Ok() {
			doc := docs[res.TaskType]
			fmt.Printf("  %-14s %-12s %-8s %d methods\n",
				res.Module, res.TaskType, doc.Metadata.Version, len(doc.Methods))
		} else {
			fmt.Printf("  %-14s SKIPPED: %v\n", res.Module, res.Err)
		}
	}
}

func runTask(reg *registry.Registry, taskType string) {
	text := prompt.Context(reg, taskType)
	if text == "" {
		fmt.Fprintf(os.Stderr, "nlcatalog: no documentation available for task type '%s'\n", taskType)
		os.Exit(1)
	}
	fmt.Print(text)
}

func runInterpret(reg *registry.Registry, text string) {
	in := interpreter.New()
	if count := in.LoadModules(reg); count == 0 {
		fmt.Fprintln(os.Stderr, "nlcatalog: no method examples loaded; nothing to match against")
		os.Exit(1)
	}

	results := in.Match(text, 0.05, 3)
	if len(results) == 0 {
		fmt.Println("No matching methods found")
		os.Exit(1)
	}

	fmt.Printf("Top %d matches:\n", len(results))
	for i, res := range results {
		fmt.Printf("\n%d. %s.%s (score %.2f)\n", i+1, res.TaskType, res.Method, res.Score)
		fmt.Printf("   Example: %s\n", res.MatchedExample)
		if len(res.Params) > 0 {
			fmt.Printf("   Params:  %v\n", res.Params)
		}
		fmt.Printf("   Code:    %s\n", res.Code)
	}
}
