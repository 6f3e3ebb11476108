package mcpserver

// PostFormat describes the fields an LLM client must supply when creating or
// updating posts.
const PostFormat = `# inkwell post format

A post has four fields:

- id: assigned by the server on creation; never supply it when creating.
- title: required, non-empty plain text.
- date: calendar date, by convention YYYY-MM-DD. Lists sort by this string, so
  unpadded dates such as 2026-1-5 sort out of calendar order. Defaults to today
  when omitted on create.
- content: required, non-empty body text. The first 180 characters are shown as the excerpt.

Updates are partial: only the fields you pass are changed, and a field you
pass must not be empty.
`
