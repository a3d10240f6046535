// Package domain holds the shared types for sent campaigns, recipient
// tracking events, and the aggregated interaction records built from them.
package domain
