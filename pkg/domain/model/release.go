package model

// ReleaseInfo carries what the publisher needs to create a release record.
type ReleaseInfo struct {
	Owner   string  // Repository owner
	Repo    string  // Repository name
	TagName string  // Tag being released
	Channel Channel // Classification of the tag
}
