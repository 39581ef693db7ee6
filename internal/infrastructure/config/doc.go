// Package config provides configuration loading for Lumen Route.
//
// Service configuration is YAML with a fixed loading order:
//
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern LUMENROUTE_SECTION_KEY, for
// example LUMENROUTE_LISTEN_PORT or LUMENROUTE_MQTT_PASSWORD.
//
// The mapping and patch tables live in separate JSON files referenced by
// the service configuration, because they are edited by installers and
// swapped at runtime independently of the service options. LoadMapping
// and LoadPatch parse those files into the forms the routing core
// validates.
package config
