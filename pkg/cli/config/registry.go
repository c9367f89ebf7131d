package config

import (
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	dockerinfra "github.com/cytomine/stevedore/pkg/infra/docker"
)

// Registry holds the container registry and Docker daemon configuration.
type Registry struct {
	Host      string
	Namespace string
	Username  string
	Password  string
}

// Flags returns CLI flags for registry configuration
func (c *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry",
			Usage:       "Container registry host",
			Value:       "ghcr.io",
			Destination: &c.Host,
			Sources:     cli.EnvVars("STEVEDORE_REGISTRY"),
		},
		&cli.StringFlag{
			Name:        "registry-namespace",
			Usage:       "Registry namespace images are pushed under",
			Value:       "cytomine",
			Destination: &c.Namespace,
			Sources:     cli.EnvVars("STEVEDORE_REGISTRY_NAMESPACE"),
		},
		&cli.StringFlag{
			Name:        "registry-user",
			Usage:       "Registry username for pushes",
			Destination: &c.Username,
			Sources:     cli.EnvVars("STEVEDORE_REGISTRY_USER"),
		},
		&cli.StringFlag{
			Name:        "registry-password",
			Usage:       "Registry password or token for pushes",
			Destination: &c.Password,
			Sources:     cli.EnvVars("STEVEDORE_REGISTRY_PASSWORD"),
		},
	}
}

// Configure connects to the local Docker daemon with push credentials set.
func (c *Registry) Configure() (interfaces.ContainerEngine, error) {
	return dockerinfra.NewFromEnv(dockerinfra.Auth{
		Username: c.Username,
		Password: c.Password,
	})
}
