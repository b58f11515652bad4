// Package config loads service configuration with Viper.
//
// Values are layered, later layers winning: defaults, an optional YAML/JSON
// config file, an optional .env file and the process environment. Only
// environment variables carrying the service prefix are considered;
// INTERSECT_LOGGING_LEVEL is bound to logging.level, logging_level and the
// other nested spellings so it reaches the matching mapstructure field.
//
//	var cfg Options
//	err := config.Load("intersect", &cfg, config.WithConfigFile(path))
package config
