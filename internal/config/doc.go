// Package config provides configuration parsing and validation for snapstore.
//
// # Overview
//
// The config package loads settings from YAML files. It supports:
//
//   - YAML configuration files with strict key checking
//   - Environment variable substitution
//   - Default values for all settings
//   - Configuration validation
//
// # Configuration Structure
//
//	type Config struct {
//	    Store   StoreConfig // Page size and index tree order
//	    Logging LogConfig   // Logging settings
//	    Trace   TraceConfig // Script trace output
//	}
//
// # Loading Configuration
//
//	cfg, err := config.LoadConfig("/etc/snapstore/config.yaml")
//	if err != nil {
//	    return err
//	}
//	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
//	    return errors.Join(errs...)
//	}
//
// # Environment Variables
//
// ${VAR} and ${VAR:-default} are replaced before parsing:
//
//	logging:
//	  level: "${SNAPSTORE_LOG_LEVEL:-info}"
//
// # Example Configuration
//
//	store:
//	  pageSize: 1024
//	  btreeOrder: 32
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"
//
//	trace:
//	  format: "text"
package config
