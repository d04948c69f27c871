// Package checker contains the individual audit probes. Each checker
// inspects one dimension of a target site (URL topology, robots.txt,
// analytics tags, TLS posture, SEO metadata, content compliance) and
// produces a single CheckResult. Checkers are independent of each other;
// sequencing and failure isolation live in the audit package.
package checker
