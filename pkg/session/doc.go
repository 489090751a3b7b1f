/*
Package session orchestrates shared access to saved scenes.

It provides high-level abstractions for handling concurrent access to scene
documents across multiple replicas, combining in-process per-scene locks with
optional distributed locking over the storage adapters.
*/
package session
