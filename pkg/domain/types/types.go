package types

// Version is the application version, overwritten at build time via ldflags.
var Version = "dev"

// AppName is used for health reporting and user agent strings.
const AppName = "stevedore"
