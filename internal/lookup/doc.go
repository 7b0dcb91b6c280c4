// Package lookup implements clients for the two auxiliary key→value
// services: the message catalog (user-facing and technical texts) and the
// parameter catalog. Both clients bound their wait and degrade to a static
// fallback instead of failing the caller; the only error they surface is a
// non-404 client-status response, which indicates a caller bug rather than
// an unavailable dependency.
//
// Every result carries a source tag (remote service name or
// "backend-fallback"). The tag is observability metadata only and must
// never drive control decisions.
package lookup
