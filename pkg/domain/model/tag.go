package model

import "regexp"

// Channel is the release classification of a git tag.
type Channel string

const (
	ChannelStable     Channel = "stable"
	ChannelPrerelease Channel = "prerelease"
)

// stableTagPattern matches backport-style version tags: bp-<major>.<minor>.<patch>
// with no leading zeros in any component. Anything else is a pre-release.
var stableTagPattern = regexp.MustCompile(`^bp-(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)$`)

// ClassifyTag classifies a tag name into a release channel. Classification
// never fails: a tag that does not match the stable form falls into the
// pre-release channel, including the empty string.
func ClassifyTag(tag string) Channel {
	if stableTagPattern.MatchString(tag) {
		return ChannelStable
	}
	return ChannelPrerelease
}

// Prerelease reports whether the channel should be flagged as a pre-release
// when publishing.
func (c Channel) Prerelease() bool {
	return c != ChannelStable
}

func (c Channel) String() string {
	return string(c)
}
