package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

func TestLoadBuildConfig(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := model.LoadBuildConfig("")
		gt.NoError(t, err)
		gt.Equal(t, cfg.Service.Name, "pims")
		gt.Equal(t, cfg.Worker.Name, "pims-worker")
		gt.Equal(t, cfg.Test.Name, "pims-ci")
		gt.Equal(t, cfg.Args["VIPS_VERSION"], "8.14.5")
	})

	t.Run("partial file overrides defaults only where named", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "build.toml")
		content := `
[service]
name = "pims"
dockerfile = "docker/backend.dockerfile"
context = "."

[args]
VIPS_VERSION = "8.15.0"
PLUGIN_CSV = "pims-plugin-format-openslide"
`
		gt.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := model.LoadBuildConfig(path)
		gt.NoError(t, err)
		gt.Equal(t, cfg.Args["VIPS_VERSION"], "8.15.0")
		gt.Equal(t, cfg.Args["PLUGIN_CSV"], "pims-plugin-format-openslide")
		// Untouched sections keep their defaults.
		gt.Equal(t, cfg.Worker.Name, "pims-worker")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := model.LoadBuildConfig(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err)
	})

	t.Run("broken TOML is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "build.toml")
		gt.NoError(t, os.WriteFile(path, []byte("[args\n"), 0644))
		_, err := model.LoadBuildConfig(path)
		gt.Error(t, err)
	})
}

func TestBuildConfig_Specs(t *testing.T) {
	cfg := model.DefaultBuildConfig()

	t.Run("service spec carries the full argument set", func(t *testing.T) {
		spec := cfg.ServiceSpec("ghcr.io", "cytomine", "bp-2.4.10")
		gt.Equal(t, spec.Image.String(), "ghcr.io/cytomine/pims:bp-2.4.10")
		gt.Equal(t, len(spec.Args), len(cfg.Args))
	})

	t.Run("worker spec derives from the service image", func(t *testing.T) {
		service := cfg.ServiceSpec("ghcr.io", "cytomine", "bp-2.4.10")
		worker := cfg.WorkerSpec("ghcr.io", "cytomine", "bp-2.4.10", service.Image)

		gt.Equal(t, worker.Image.String(), "ghcr.io/cytomine/pims-worker:bp-2.4.10")
		gt.Equal(t, worker.Args["FROM_IMAGE"], "ghcr.io/cytomine/pims:bp-2.4.10")
	})

	t.Run("spec argument maps are independent copies", func(t *testing.T) {
		a := cfg.ServiceSpec("ghcr.io", "cytomine", "t1")
		b := cfg.ServiceSpec("ghcr.io", "cytomine", "t2")
		a.Args["VIPS_VERSION"] = "mutated"
		gt.Equal(t, b.Args["VIPS_VERSION"], "8.14.5")
		gt.Equal(t, cfg.Args["VIPS_VERSION"], "8.14.5")
	})

	t.Run("test spec names the ephemeral package", func(t *testing.T) {
		spec := cfg.TestSpec("ghcr.io", "cytomine", "pr421-deadbee")
		gt.Equal(t, spec.Image.String(), "ghcr.io/cytomine/pims-ci:pr421-deadbee")
	})
}

func TestBuildConfig_Validate(t *testing.T) {
	t.Run("empty argument name is rejected", func(t *testing.T) {
		cfg := model.DefaultBuildConfig()
		cfg.Args[" "] = "value"
		gt.Error(t, cfg.Validate())
	})

	t.Run("empty image name is rejected", func(t *testing.T) {
		cfg := model.DefaultBuildConfig()
		cfg.Worker.Name = ""
		gt.Error(t, cfg.Validate())
	})
}
