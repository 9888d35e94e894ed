// Package config provides configuration loading for the regions command.
//
// Configuration is built in layers: Default values, then every YAML file
// added to a Loader in order, then REGIONS_* environment variables for
// values usually injected by a deployment (endpoint, database password,
// object storage keys, pushgateway). Command-line flags are applied last by
// the caller.
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddLayer("/etc/regions/base.yaml")
//	loader.AddLayer("regions.local.yaml") // Overrides base
//
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//
// # File Format
//
//	countries: [CAN, USA]
//	workers: 4
//	guides:
//	  root: /data/guides
//	  filename: result.json
//	  search_field: search
//	sparql:
//	  endpoint: http://datastore:8890/sparql
//	  timeout: 30s
//	  rate_limit: 20
//	memo:
//	  store: sqlite
//	  path: /var/cache/regions/memo.db
//	foi:
//	  host: postgis
//	  user: regions
//	  database: gis
//	output:
//	  target: ./target
//	  object:
//	    endpoint: minio:9000
//	    bucket: regional-guides
//	log:
//	  level: info
//	  format: json
//	metrics:
//	  pushgateway: http://pushgateway:9091
//
// Validate returns errors classified as invalid (errors.IsInvalid) wrapping
// errors.ErrInvalidConfig.
package config
