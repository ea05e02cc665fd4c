// Package config provides configuration loading for familymeter.
//
// Configuration is assembled from three sources, in order of precedence:
//
//	1. Environment variables (highest priority), prefixed with FAMILYMETER_
//	2. A YAML file (familymeter.yaml or configs/familymeter.yaml)
//	3. Built-in defaults (lowest priority)
//
// Examples:
//
//	FAMILYMETER_SERVER_PORT=9090
//	FAMILYMETER_SOURCE_CSV_PATH=/data/rodinny_merac.csv
//	FAMILYMETER_LOGGING_LEVEL=debug
//
// The chart group set can only be replaced from the YAML file:
//
//	groups:
//	  - {key: all, title: Všetci, kind: all}
//	  - {key: female, title: Ženy, kind: sex, aliases: [žena]}
//	  - {key: Elena, title: "Potomkovia - Elena Vanochová", kind: lineage}
//
// The resulting Config is validated before it is returned.
package config
