// Package llm contains the adapter layer for invoking the text-completion
// backend. It abstracts away the provider-specific API and normalizes the
// request/response lifecycle for use within the chat orchestrator.
package llm
