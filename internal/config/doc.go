// Package config defines the launcher configuration and its loading rules.
//
// Configuration is read from launcher.toml and overlaid with SCRIBEVIEW_*
// environment variables; precedence is flags > environment > file > defaults.
// A missing file is not an error. The defaults reproduce the standard
// packaging layouts probed for the backend:
//
//	../backend                     (development checkout)
//	{exe}/../Resources/backend     (packaged resources layout)
//	{exe}/backend                  (flat bundled layout)
//
// The {exe} placeholder expands to the directory of the running executable.
// A file watcher can live-apply the safe subset of settings (the log level);
// backend settings are read once at startup.
package config
