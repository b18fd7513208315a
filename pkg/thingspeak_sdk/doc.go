// Package thingspeak_sdk bootstraps a ThingSpeak client from environment
// variables. THINGSPEAK_RUNTIME_MODE selects "http", "mock" or "auto" (the
// default): auto uses HTTP when THINGSPEAK_API_URL is set and an in-memory
// mock otherwise. THINGSPEAK_MOCK_SEED points at a YAML or JSON file that
// pre-populates the mock's channels.
package thingspeak_sdk
