package mcpserver

// FragmentGuide explains how documentation pages are addressed, for LLM
// consumers deciding which fragment to resolve.
const FragmentGuide = `# eclipse-cs fragment guide

Every documentation page is addressed by a fragment: a path such as
` + "`/install`" + ` or ` + "`/faq`" + ` that appears in site links as ` + "`#!/install`" + `.

## Resolution

1. ` + "`/`" + ` and ` + "`//`" + ` (and the empty fragment) are the home page.
2. ` + "`/releasenotes`" + ` aggregates every release's notes, newest first.
   Releases whose notes are missing are skipped.
3. Any other fragment is looked up directly as ` + "`partials/<fragment>.html`" + `.
   There is no fallback: an unknown fragment is not found.

The browser navigator differs on point 3: it uses the route table
(` + "`list_routes`" + ` or the ` + "`ecsdoc://routes`" + ` resource) and shows the home page
for unknown fragments.

## Tools

- ` + "`resolve_fragment`" + ` returns the document a crawler receives.
- ` + "`search_templates`" + ` finds pages by text; results carry their fragment.
- ` + "`get_backlinks`" + ` lists pages linking to a fragment.
- ` + "`list_releases`" + ` returns the release index with expansion state.
`
