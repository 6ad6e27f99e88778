// Package conversation resolves the CLI's most recent conversation for a
// working directory.
//
// The CLI keeps one append-only record file per conversation under
// <state>/projects/<key>/<conversation-id>.jsonl, where key is the working
// directory with every non-alphanumeric character replaced by "-". The
// newest file by modification time is the conversation to resume.
package conversation
