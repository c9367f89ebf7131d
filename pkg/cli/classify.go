package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

func cmdClassify() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Print the release channel a tag would be classified into",
		ArgsUsage: "<tag>",
		Action: func(ctx context.Context, c *cli.Command) error {
			tag := c.Args().First()
			if c.Args().Len() != 1 {
				return goerr.New("exactly one tag argument is required")
			}

			channel := model.ClassifyTag(tag)
			fmt.Printf("%s\tprerelease=%v\n", channel, channel.Prerelease())
			return nil
		},
	}
}
