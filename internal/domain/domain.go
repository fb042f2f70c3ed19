// Package domain holds the types and sentinel errors shared across shakesearch layers.
package domain

// KeyPrefix namespaces every key shakesearch writes to the cache store.
const KeyPrefix = "shakesearch:"
