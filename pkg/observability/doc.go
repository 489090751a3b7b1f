/*
Package observability provides tools for monitoring scene activity.

It exposes prometheus collectors for node and connection lifecycle counts and
connection rejection reasons, wired into a scene through domain.LifecycleHooks.
*/
package observability
