// Package chat contains the core orchestrator for a single conversational
// turn. It classifies the user's intent, builds the role-delimited prompt,
// invokes the completion model, executes any tool call embedded in the
// output and drives the second summarization pass, while maintaining the
// bounded per-session history.
package chat
