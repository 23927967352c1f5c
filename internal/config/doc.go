// Package config handles YAML configuration loading for the snapshot
// collector, with environment variable substitution.
//
// Configuration files support ${VAR} syntax, so secrets such as the API
// key and the database password can stay in the environment (or a .env
// file loaded by the binary).
package config
