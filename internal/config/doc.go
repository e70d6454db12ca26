// Package config loads Waypoint configuration.
//
// Settings come from three layers, later ones winning: built-in defaults,
// waypoint.json at the project root, and WAYPOINT_* environment variables.
// A .env file next to waypoint.json supplies environment variables that are
// not already set.
//
// # Configuration File Structure
//
//	{
//	  "server":  { "host": "", "port": 8080 },
//	  "log":     { "level": "info", "format": "text" },
//	  "content": { "driver": "sqlite", "sqliteDSN": "waypoint.db" },
//	  "loader":  { "delay": "250ms", "timeout": "10s" },
//	  "cache":   { "staleTime": "30s" },
//	  "s3":      { "bucket": "lessons", "region": "us-east-1", "prefix": "lessons" }
//	}
//
// # Environment
//
//	WAYPOINT_HOST, WAYPOINT_PORT
//	WAYPOINT_LOG_LEVEL, WAYPOINT_LOG_FORMAT
//	WAYPOINT_CONTENT_DRIVER, WAYPOINT_SQLITE_DSN
//	WAYPOINT_LOADER_DELAY, WAYPOINT_LOADER_TIMEOUT, WAYPOINT_CACHE_STALE
//	WAYPOINT_S3_BUCKET, WAYPOINT_S3_REGION, WAYPOINT_S3_ENDPOINT, WAYPOINT_S3_PREFIX
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	slog.SetDefault(cfg.Logger(os.Stderr))
package config
