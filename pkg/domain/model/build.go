package model

import (
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// ImageRef identifies one image in the registry namespace.
type ImageRef struct {
	Registry  string // e.g. "ghcr.io"
	Namespace string // e.g. "cytomine"
	Name      string // package name, e.g. "pims"
	Tag       string
}

// Repository returns the image reference without the tag.
func (r ImageRef) Repository() string {
	return fmt.Sprintf("%s/%s/%s", r.Registry, r.Namespace, r.Name)
}

// String returns the full image reference including the tag.
func (r ImageRef) String() string {
	return r.Repository() + ":" + r.Tag
}

// BuildSpec describes one delegated image build. Build arguments pass through
// to the builder opaquely; no defaulting or validation happens here beyond
// what BuildConfig.Validate checks at load time.
type BuildSpec struct {
	Image      ImageRef
	Dockerfile string
	ContextDir string
	Args       map[string]string
}

// BuildConfig is the build-parameter file, parsed from TOML. It enumerates
// the fixed set of named parameters the image builds receive.
type BuildConfig struct {
	Service ImageBuildConfig  `toml:"service"`
	Worker  ImageBuildConfig  `toml:"worker"`
	Test    TestBuildConfig   `toml:"test"`
	Args    map[string]string `toml:"args"`
}

// ImageBuildConfig configures one of the two published image variants.
type ImageBuildConfig struct {
	Name       string `toml:"name"`
	Dockerfile string `toml:"dockerfile"`
	Context    string `toml:"context"`
	// BaseImageArg is the build argument the worker variant receives with
	// the freshly pushed service image reference. Empty for the service.
	BaseImageArg string `toml:"base_image_arg"`
}

// TestBuildConfig configures the throwaway validation image and the test
// command run inside it.
type TestBuildConfig struct {
	Name       string   `toml:"name"`
	Dockerfile string   `toml:"dockerfile"`
	Context    string   `toml:"context"`
	Command    []string `toml:"command"`
	ReportFile string   `toml:"report_file"`
}

// DefaultBuildConfig returns the parameter set used when no file is given.
// The values mirror the PIMS image build.
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		Service: ImageBuildConfig{
			Name:       "pims",
			Dockerfile: "docker/backend.dockerfile",
			Context:    ".",
		},
		Worker: ImageBuildConfig{
			Name:         "pims-worker",
			Dockerfile:   "docker/worker.dockerfile",
			Context:      ".",
			BaseImageArg: "FROM_IMAGE",
		},
		Test: TestBuildConfig{
			Name:       "pims-ci",
			Dockerfile: "docker/backend.dockerfile",
			Context:    ".",
			Command:    []string{"python", "-m", "pytest", "tests/"},
			ReportFile: "/app/test-report.xml",
		},
		Args: map[string]string{
			"ENTRYPOINT_SCRIPTS_VERSION": "1.3.0",
			"GDK_PIXBUF_VERSION":         "2.42.10",
			"GUNICORN_VERSION":           "20.1.0",
			"IMAGEMAGICK_VERSION":        "7.1.1-21",
			"LIBHEIF_VERSION":            "1.17.5",
			"LIBIMAGEQUANT_VERSION":      "4.2.2",
			"OPENJPEG_VERSION":           "2.5.0",
			"PIMS_REVISION":              "",
			"PLUGIN_CSV":                 "",
			"PY_VERSION":                 "3.10",
			"SETUPTOOLS_VERSION":         "68.2.2",
			"VIPS_VERSION":               "8.14.5",
		},
	}
}

// LoadBuildConfig reads a TOML build-parameter file, layering it over the
// defaults so a partial file only overrides what it names.
func LoadBuildConfig(path string) (*BuildConfig, error) {
	cfg := DefaultBuildConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read build config file", goerr.V("path", path))
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse build config file", goerr.V("path", path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parameter names only. Values are opaque.
func (c *BuildConfig) Validate() error {
	for key := range c.Args {
		if strings.TrimSpace(key) == "" {
			return goerr.New("empty build argument name")
		}
	}
	if c.Service.Name == "" || c.Worker.Name == "" || c.Test.Name == "" {
		return goerr.New("image names must not be empty")
	}
	return nil
}

// ServiceSpec builds the spec for the main service image for the given tag.
func (c *BuildConfig) ServiceSpec(registry, namespace, tag string) *BuildSpec {
	return &BuildSpec{
		Image: ImageRef{
			Registry:  registry,
			Namespace: namespace,
			Name:      c.Service.Name,
			Tag:       tag,
		},
		Dockerfile: c.Service.Dockerfile,
		ContextDir: c.Service.Context,
		Args:       c.copyArgs(),
	}
}

// WorkerSpec builds the spec for the worker variant. The worker derives from
// the already pushed service image, passed through the configured build
// argument.
func (c *BuildConfig) WorkerSpec(registry, namespace, tag string, serviceImage ImageRef) *BuildSpec {
	args := c.copyArgs()
	if c.Worker.BaseImageArg != "" {
		args[c.Worker.BaseImageArg] = serviceImage.String()
	}
	return &BuildSpec{
		Image: ImageRef{
			Registry:  registry,
			Namespace: namespace,
			Name:      c.Worker.Name,
			Tag:       tag,
		},
		Dockerfile: c.Worker.Dockerfile,
		ContextDir: c.Worker.Context,
		Args:       args,
	}
}

// TestSpec builds the spec for the ephemeral validation image of one PR head.
func (c *BuildConfig) TestSpec(registry, namespace, tag string) *BuildSpec {
	return &BuildSpec{
		Image: ImageRef{
			Registry:  registry,
			Namespace: namespace,
			Name:      c.Test.Name,
			Tag:       tag,
		},
		Dockerfile: c.Test.Dockerfile,
		ContextDir: c.Test.Context,
		Args:       c.copyArgs(),
	}
}

func (c *BuildConfig) copyArgs() map[string]string {
	args := make(map[string]string, len(c.Args))
	for k, v := range c.Args {
		args[k] = v
	}
	return args
}
