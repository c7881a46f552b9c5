package mcpserver

import "strings"

const conventionsURI = "jotter://conventions"

const conventionsTemplate = `# Note Conventions

A notes directory is a flat folder of plain-text files.

## Rules

1. Every note is a regular file ending with ` + "`{ext}`" + `. Sub-directories are ignored.
2. The display name is the filename without ` + "`{ext}`" + `.
3. ` + "`rename_note`" + ` always appends ` + "`{ext}`" + ` to the new name, even when the new
   name already ends with it. Renaming onto an existing name replaces that note.
4. ` + "`new_note`" + ` names the note after the current minute (` + "`YYYYMMDDHHmm{ext}`" + `).
   Two new notes in the same minute share one file; the second empties it.
5. ` + "`write_note`" + ` replaces the whole content. There is no append.
6. Content is UTF-8 plain text. No front matter, no markup is interpreted.
7. ` + "`.DS_Store`" + ` files are never listed.
`

// Conventions returns the naming rules for notes carrying ext.
func Conventions(ext string) string {
	return strings.ReplaceAll(conventionsTemplate, "{ext}", ext)
}
